package category

// shelfLifeStrategy 신선식품/디저트/즉석식품
// 유통기한 구간표로 안전재고 일수 결정, 선택적으로 회전율 배수 적용
type shelfLifeStrategy struct {
	base
}

func (s *shelfLifeStrategy) Calculate(in Input) Result {
	p := s.profile
	detail := make(map[string]float64, 4)

	shelfLife := in.ShelfLifeDays
	if shelfLife <= 0 {
		// 유통기한 미확인 → 카테고리 기본값
		shelfLife = p.DefaultShelfLifeDays
		detail["shelf_life_defaulted"] = 1
	}
	detail["shelf_life_days"] = float64(shelfLife)

	days := p.BucketSafetyDays(shelfLife)
	detail["safety_days"] = days

	turnoverMult := 1.0
	if p.TurnoverAdjust && in.Features != nil && in.Features.Turnover7 != nil {
		t := *in.Features.Turnover7
		switch {
		case t >= p.TurnoverHigh:
			turnoverMult = p.TurnoverHighMult
		case t < p.TurnoverLow:
			turnoverMult = p.TurnoverLowMult
		}
	}
	detail["turnover_multiplier"] = turnoverMult

	return s.finish(in, Result{
		SafetyStock: nonNegative(in.DailyAverage) * days * turnoverMult,
		Detail:      detail,
	})
}
