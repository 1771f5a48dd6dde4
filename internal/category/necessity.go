package category

import "math"

// necessityStrategy 생활용품/잡화
// 일평균이 MinDailyAverage 미만이면 안전재고 0, 아니면 최소 MinUnits 유지
type necessityStrategy struct {
	base
}

func (s *necessityStrategy) Calculate(in Input) Result {
	p := s.profile
	daily := nonNegative(in.DailyAverage)

	if daily < p.MinDailyAverage {
		return s.finish(in, Result{
			SafetyStock: 0,
			Detail: map[string]float64{
				"ultra_low": 1,
			},
		})
	}

	return s.finish(in, Result{
		SafetyStock: math.Max(p.MinUnits, daily*p.SafetyDays),
		Detail: map[string]float64{
			"safety_days": p.SafetyDays,
		},
	})
}
