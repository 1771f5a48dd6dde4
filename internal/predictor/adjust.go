package predictor

import (
	"math"

	"github.com/wonny/ordercast/internal/contracts"
)

// VolatilityMultiplier 변동계수(CV) 기반 안전재고 배수
//
//	CV < 0.3      → 1.0 (stable)
//	0.3 ~ 0.5     → 1.1 ~ 1.2 (normal)
//	0.5 ~ 0.8     → 1.2 ~ 1.5 (volatile)
//	> 0.8         → 1.3 ~ 2.0 (highly_volatile)
//
// 결과는 항상 [1.0, maxMult] 범위
func VolatilityMultiplier(cv, maxMult float64) (float64, string) {
	var mult float64
	var label string

	switch {
	case math.IsNaN(cv) || cv < 0.3:
		mult, label = 1.0, "stable"
	case cv < 0.5:
		mult, label = 1.1+(cv-0.3)/0.2*0.1, "normal"
	case cv < 0.8:
		mult, label = 1.2+(cv-0.5)/0.3*0.3, "volatile"
	default:
		mult, label = 1.3+math.Min((cv-0.8)/1.2, 1)*0.7, "highly_volatile"
	}

	return clamp(mult, 1.0, maxMult), label
}

// TrendMultiplier 추세 구간 배수
func (c Config) TrendMultiplier(label contracts.TrendLabel) float64 {
	switch label {
	case contracts.TrendStrongUp:
		return c.StrongUpMultiplier
	case contracts.TrendUp:
		return c.UpMultiplier
	case contracts.TrendDown:
		return c.DownMultiplier
	case contracts.TrendStrongDown:
		return c.StrongDownMultiplier
	default:
		return 1.0
	}
}

// band 유통기한에 맞는 회전율 기준
func (c Config) band(shelfLife int) TurnoverBand {
	for _, b := range c.TurnoverBands {
		if b.MaxShelfLife == 0 || shelfLife <= b.MaxShelfLife {
			return b
		}
	}
	return TurnoverBand{Fast: math.Inf(1), Slow: 0}
}

// TurnoverMultiplier 7일 회전율 보정
// 빠른 회전 → 소폭 증가 (재고 1일분 미만이면 더 크게)
// 느린 회전 + 재고 일수 과잉 → 감소
func (c Config) TurnoverMultiplier(turnover *float64, shelfLife int, currentStock, daily float64) (float64, string) {
	if turnover == nil {
		return 1.0, "unknown"
	}
	if shelfLife <= 0 {
		shelfLife = c.ExcessStockMaxDays
	}

	b := c.band(shelfLife)
	daysOfStock := math.Inf(1)
	if daily > 0 {
		daysOfStock = currentStock / daily
	}

	mult, label := 1.0, "normal"
	switch {
	case *turnover >= b.Fast:
		mult, label = c.FastMultiplier, "fast"
		if daysOfStock < 1 {
			mult = c.FastLowStockMult
		}
	case *turnover < b.Slow:
		threshold := float64(min(shelfLife, c.ExcessStockMaxDays))
		switch {
		case daysOfStock > 2*threshold:
			mult, label = c.SlowExcessMultiplier, "slow_excess"
		case daysOfStock > threshold:
			mult, label = c.SlowMultiplier, "slow"
		}
	}

	return clamp(mult, c.MinTurnoverMult, c.MaxTurnoverMult), label
}

// WasteMultiplier 30일 폐기율 보정 (식품은 더 가파른 곡선)
func WasteMultiplier(wasteRate *float64, food bool) (float64, string) {
	if wasteRate == nil {
		return 1.0, "unknown"
	}
	w := *wasteRate

	if food {
		switch {
		case w >= 0.20:
			return 0.5, "waste_critical"
		case w >= 0.15:
			return 0.65, "waste_high"
		case w >= 0.10:
			return 0.8, "waste_elevated"
		case w >= 0.05:
			return 0.9, "waste_low"
		}
		return 1.0, "waste_none"
	}

	switch {
	case w >= 0.20:
		return 0.7, "waste_critical"
	case w >= 0.10:
		return 0.85, "waste_elevated"
	case w >= 0.05:
		return 0.95, "waste_low"
	}
	return 1.0, "waste_none"
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
