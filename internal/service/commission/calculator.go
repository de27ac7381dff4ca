package commission

import (
	"github.com/shopspring/decimal"

	"github.com/clinio/clinio_backend/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Amount computes the commission owed under one rule snapshot.
//
//   - percentage: serviceValue * value / 100
//   - fixed per appointment: value, quantity ignored
//   - fixed per any other unit: value * quantity
//
// Callers validate serviceValue and quantity beforehand; the calculator does
// no currency validation of its own.
func Amount(calcType model.CalcType, unit model.CalcUnit, value, serviceValue decimal.Decimal, quantity int) decimal.Decimal {
	switch calcType {
	case model.CalcPercentage:
		return serviceValue.Mul(value).Div(hundred).Round(2)
	case model.CalcFixed:
		if !unit.ScalesByQuantity() {
			return value
		}
		return value.Mul(decimal.NewFromInt(int64(quantity)))
	default:
		return decimal.Zero
	}
}
