package category

// steadyStrategy 음료/냉동 (요일 계수 + 고정 안전재고 일수)
type steadyStrategy struct {
	base
}

func (s *steadyStrategy) Calculate(in Input) Result {
	return s.finish(in, Result{
		SafetyStock: nonNegative(in.DailyAverage) * s.profile.SafetyDays,
		Detail: map[string]float64{
			"safety_days": s.profile.SafetyDays,
		},
	})
}
