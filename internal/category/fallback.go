package category

// defaultStrategy 미분류 카테고리 (모든 카테고리 ID 에 매칭)
type defaultStrategy struct {
	base
}

func (s *defaultStrategy) Matches(string) bool { return true }

func (s *defaultStrategy) Calculate(in Input) Result {
	return s.finish(in, Result{
		SafetyStock: nonNegative(in.DailyAverage) * s.profile.SafetyDays,
		Detail: map[string]float64{
			"safety_days": s.profile.SafetyDays,
		},
	})
}
