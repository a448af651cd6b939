// Package rule evaluates the order admission rule with CEL.
package rule

import (
	"context"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/logger"
	"stockflow/internal/service/order/domain"
)

// DefaultAdmissionRule accepts any non-empty order of positive lines.
const DefaultAdmissionRule = "size(items) > 0 && items.all(i, i.productId > 0 && i.quantity > 0)"

// CELAdmission implements port.AdmissionPolicy. The expression sees
// storeId, userId and items (a list of {productId, quantity} maps) and must
// yield a bool.
type CELAdmission struct {
	expr    string
	program cel.Program
}

// NewCELAdmission compiles expr once; an empty expr selects DefaultAdmissionRule.
func NewCELAdmission(expr string) (*CELAdmission, error) {
	if expr == "" {
		expr = DefaultAdmissionRule
	}
	env, err := cel.NewEnv(
		cel.Variable("storeId", cel.IntType),
		cel.Variable("userId", cel.IntType),
		cel.Variable("items", cel.ListType(cel.MapType(cel.StringType, cel.IntType))),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cel environment")
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, errors.Wrapf(iss.Err(), "compile admission rule %q", expr)
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.Errorf("admission rule %q must yield bool, yields %s", expr, ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "build admission rule %q", expr)
	}
	return &CELAdmission{expr: expr, program: program}, nil
}

func (a *CELAdmission) Admit(ctx context.Context, order *domain.Order, items []domain.ItemRequest) error {
	lines := make([]map[string]int64, 0, len(items))
	for _, it := range items {
		lines = append(lines, map[string]int64{"productId": it.ProductID, "quantity": int64(it.Quantity)})
	}
	out, _, err := a.program.ContextEval(ctx, map[string]any{
		"storeId": order.StoreID,
		"userId":  order.UserID,
		"items":   lines,
	})
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("rule", a.expr).Msg("admission rule evaluation failed")
		return apperr.Validation("order rejected: admission rule could not be evaluated: %v", err)
	}
	if admitted, ok := out.Value().(bool); !ok || !admitted {
		return apperr.Validation("order rejected by admission rule %q", a.expr)
	}
	return nil
}
