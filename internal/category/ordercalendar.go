package category

// orderCalendarStrategy 라면/과자
// 발주 불가 요일에는 발주 생략, 가능 요일에는 다음 발주일까지의 일수만큼 재고 확보
type orderCalendarStrategy struct {
	base
}

func (s *orderCalendarStrategy) Calculate(in Input) Result {
	wd := in.TargetDate.Weekday()

	if !s.profile.CanOrder(wd) {
		return s.finish(in, Result{
			SkipOrder:  true,
			SkipReason: "non_order_day",
			Detail: map[string]float64{
				"weekday": float64(wd),
			},
		})
	}

	gap := s.profile.DaysToNextOrder(wd)
	return s.finish(in, Result{
		SafetyStock: nonNegative(in.DailyAverage) * float64(gap),
		Detail: map[string]float64{
			"days_to_next_order": float64(gap),
		},
	})
}
