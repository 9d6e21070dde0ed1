package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
)

// QuantityScale decimales con los que se guardan las cantidades (NUMERIC(18,4)).
const QuantityScale int32 = 4

var maxQuantity = decimal.New(1, 18-QuantityScale)

// CheckQuantity rechaza valores que la BD no puede guardar tal cual: más de QuantityScale
// decimales o más de 14 dígitos enteros. Se valida antes de reconciliar para que el cálculo
// y la fila guardada coincidan.
func CheckQuantity(field string, v decimal.Decimal) error {
	if !v.Equal(v.Truncate(QuantityScale)) {
		return fmt.Errorf("%w: %s admite como máximo %d decimales", domain.ErrInvalidInput, field, QuantityScale)
	}
	if v.Abs().GreaterThanOrEqual(maxQuantity) {
		return fmt.Errorf("%w: %s fuera de rango", domain.ErrInvalidInput, field)
	}
	return nil
}
