package category

// alcoholStrategy 맥주/소주/주류 일반
// 평일 SafetyDays, 피크 요일(금/토) PeakSafetyDays, 최대 재고 = 일평균 × MaxStockDays
type alcoholStrategy struct {
	base
}

func (s *alcoholStrategy) Calculate(in Input) Result {
	daily := nonNegative(in.DailyAverage)

	days := s.profile.SafetyDays
	peak := s.profile.IsPeak(in.TargetDate.Weekday())
	if peak && s.profile.PeakSafetyDays > 0 {
		days = s.profile.PeakSafetyDays
	}

	peakFlag := 0.0
	if peak {
		peakFlag = 1
	}

	return s.finish(in, Result{
		SafetyStock: daily * days,
		Detail: map[string]float64{
			"safety_days": days,
			"peak_day":    peakFlag,
		},
	})
}
