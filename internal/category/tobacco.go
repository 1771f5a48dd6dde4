package category

import "math"

// tobaccoFrequencyWindow 보루 판매/품절 빈도 집계 구간 (일)
const tobaccoFrequencyWindow = 30

// tobaccoStrategy 담배
// 보루 판매 빈도와 품절 빈도로 동적 배수를 만들고, 진열 한도(MaxStockUnits)로 상한
type tobaccoStrategy struct {
	base
}

func (s *tobaccoStrategy) Calculate(in Input) Result {
	daily := nonNegative(in.DailyAverage)

	var fullCaseFreq, stockoutFreq float64
	if fs := in.Features; fs != nil && !fs.NoData {
		window := float64(tobaccoFrequencyWindow)
		if fs.HistoryDays > 0 && fs.HistoryDays < tobaccoFrequencyWindow {
			window = float64(fs.HistoryDays)
		}
		fullCaseFreq = float64(fs.FullCaseDays30) / window
		stockoutFreq = float64(fs.StockoutDays30) / window
	}

	p := s.profile
	multiplier := 1 +
		math.Min(fullCaseFreq*p.FullCaseWeight, p.FrequencyCap) +
		math.Min(stockoutFreq*p.StockoutWeight, p.FrequencyCap)

	safety := daily * p.SafetyDays * multiplier
	if p.MaxStockUnits > 0 {
		safety = math.Min(safety, p.MaxStockUnits)
	}

	return s.finish(in, Result{
		SafetyStock: safety,
		Detail: map[string]float64{
			"full_case_freq":     fullCaseFreq,
			"stockout_freq":      stockoutFreq,
			"dynamic_multiplier": multiplier,
		},
	})
}
