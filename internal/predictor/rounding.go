package predictor

import (
	"github.com/shopspring/decimal"
)

// quantityPlaces 부동소수 오차 제거용 반올림 자릿수 (5.0000000001 → 5)
const quantityPlaces = 4

// RoundUpToUnit 발주 단위로 올림 (음수/0 은 0)
func RoundUpToUnit(qty float64, unit int) int {
	if unit < 1 {
		unit = 1
	}
	q := decimal.NewFromFloat(qty).Round(quantityPlaces)
	if !q.IsPositive() {
		return 0
	}
	u := decimal.NewFromInt(int64(unit))
	return int(q.Div(u).Ceil().Mul(u).IntPart())
}

// RoundDownToUnit 발주 단위로 내림 (상한 계산용, 음수는 0)
func RoundDownToUnit(qty float64, unit int) int {
	if unit < 1 {
		unit = 1
	}
	q := decimal.NewFromFloat(qty).Round(quantityPlaces)
	if !q.IsPositive() {
		return 0
	}
	u := decimal.NewFromInt(int64(unit))
	return int(q.Div(u).Floor().Mul(u).IntPart())
}
