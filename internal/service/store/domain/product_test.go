package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyInsertsUnknownProduct(t *testing.T) {
	p, write := Apply(nil, &InventoryEvent{EventType: EventStockDecrease, ProductID: 1, ProductName: "Laptop", NewQuantity: 4, Version: 3})

	assert.True(t, write)
	assert.Equal(t, "Laptop", p.Name)
	assert.Equal(t, 4, p.Quantity)
	assert.Equal(t, int64(3), p.Version)
}

func TestApplyOverwritesQuantityOnly(t *testing.T) {
	existing := &Product{ID: 1, Name: "Laptop", Price: 10, Quantity: 5, Version: 2}

	p, write := Apply(existing, &InventoryEvent{EventType: EventStockIncrease, ProductID: 1, ProductName: "Renamed", Price: 99, NewQuantity: 8, Version: 3})

	assert.True(t, write)
	assert.Equal(t, 8, p.Quantity)
	assert.Equal(t, int64(3), p.Version)
	assert.Equal(t, "Laptop", p.Name)
	assert.Equal(t, 10.0, p.Price)
	assert.Equal(t, 5, existing.Quantity)
}

func TestApplyCreatedOverwritesAllFields(t *testing.T) {
	existing := &Product{ID: 1, Name: "Old", Quantity: 5, Version: 2}

	p, write := Apply(existing, &InventoryEvent{EventType: EventCreated, ProductID: 1, ProductName: "New", NewQuantity: 9, Version: 4})

	assert.True(t, write)
	assert.Equal(t, "New", p.Name)
	assert.Equal(t, 9, p.Quantity)
}

func TestApplySkipsStaleVersions(t *testing.T) {
	existing := &Product{ID: 1, Quantity: 5, Version: 4}

	_, write := Apply(existing, &InventoryEvent{EventType: EventStockIncrease, ProductID: 1, NewQuantity: 9, Version: 4})
	assert.False(t, write)

	_, write = Apply(existing, &InventoryEvent{EventType: EventStockIncrease, ProductID: 1, NewQuantity: 9, Version: 3})
	assert.False(t, write)
}

func TestApplyUnversionedEventsAlwaysOverwrite(t *testing.T) {
	existing := &Product{ID: 1, Quantity: 5, Version: 4}

	p, write := Apply(existing, &InventoryEvent{EventType: EventStockDecrease, ProductID: 1, NewQuantity: 1})

	assert.True(t, write)
	assert.Equal(t, 1, p.Quantity)
	assert.Equal(t, int64(4), p.Version)
}
