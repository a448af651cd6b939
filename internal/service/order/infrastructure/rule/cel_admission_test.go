package rule

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/service/order/domain"
)

func TestDefaultRule(t *testing.T) {
	a, err := NewCELAdmission("")
	require.NoError(t, err)
	order := &domain.Order{StoreID: 1, UserID: 42}
	ctx := context.Background()

	assert.NoError(t, a.Admit(ctx, order, []domain.ItemRequest{{ProductID: 100, Quantity: 3}}))

	err = a.Admit(ctx, order, nil)
	assert.True(t, errors.Is(err, apperr.ErrValidationFailed))

	err = a.Admit(ctx, order, []domain.ItemRequest{{ProductID: 100, Quantity: 0}})
	assert.True(t, errors.Is(err, apperr.ErrValidationFailed))
}

func TestCustomRuleSeesOrderFields(t *testing.T) {
	a, err := NewCELAdmission("storeId == 1 && size(items) <= 2 && items.all(i, i.quantity <= 10)")
	require.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, a.Admit(ctx, &domain.Order{StoreID: 1, UserID: 7}, []domain.ItemRequest{{ProductID: 1, Quantity: 10}}))
	assert.Error(t, a.Admit(ctx, &domain.Order{StoreID: 2, UserID: 7}, []domain.ItemRequest{{ProductID: 1, Quantity: 1}}))
	assert.Error(t, a.Admit(ctx, &domain.Order{StoreID: 1, UserID: 7}, []domain.ItemRequest{{ProductID: 1, Quantity: 11}}))
	assert.Error(t, a.Admit(ctx, &domain.Order{StoreID: 1, UserID: 7}, []domain.ItemRequest{
		{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 1}, {ProductID: 3, Quantity: 1},
	}))
}

func TestInvalidRulesAreRejectedAtStartup(t *testing.T) {
	_, err := NewCELAdmission("size(items) +")
	assert.Error(t, err)

	_, err = NewCELAdmission("size(items)")
	assert.Error(t, err)

	_, err = NewCELAdmission("unknownVar > 1")
	assert.Error(t, err)
}
