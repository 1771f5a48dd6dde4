package predictor

import (
	"github.com/wonny/ordercast/internal/contracts"
)

// Quality 데이터 품질 등급 (lag 신뢰도 + 28일 구간 실제 관측 일수)
func (c Config) Quality(fs *contracts.FeatureSet) contracts.DataQuality {
	if fs == nil || fs.NoData || fs.ObservedDays == 0 {
		return contracts.QualityNoData
	}
	switch {
	case fs.ObservedDays >= c.HighQualityDays && fs.LagConfidence == contracts.LagConfidenceHigh:
		return contracts.QualityHigh
	case fs.ObservedDays >= c.MediumQualityDays:
		return contracts.QualityMedium
	default:
		return contracts.QualityLow
	}
}

// signal 블렌딩 입력 하나
type signal struct {
	name   string
	value  float64
	weight float64
}

// Blend 품질 등급별 가중 평균
// 값이 없거나 0인 신호는 제외하고 남은 가중치로 재정규화
func (c Config) Blend(fs *contracts.FeatureSet, quality contracts.DataQuality) (float64, []string) {
	w, ok := c.Weights[quality]
	if !ok || fs == nil {
		return 0, nil
	}

	signals := []signal{
		{"sma7", rollingMean(fs, 7), w.SMA7},
		{"ewm7", contracts.Value(fs.EWM7, 0), w.EWM7},
		{"same_weekday", contracts.Value(fs.SameWeekdayAvg, 0), w.Weekday},
		{"mean28", rollingMean(fs, 28), w.Mean28},
	}

	var total, sum float64
	var missing []string
	for _, s := range signals {
		if s.value <= 0 {
			missing = append(missing, s.name)
			continue
		}
		if s.weight <= 0 {
			continue
		}
		total += s.weight
		sum += s.value * s.weight
	}

	if total == 0 {
		return 0, missing
	}
	return sum / total, missing
}

// rollingMean 관측 일수가 있는 구간만 평균 반환
func rollingMean(fs *contracts.FeatureSet, window int) float64 {
	s, ok := fs.Rolling[window]
	if !ok || s.Days == 0 {
		return 0
	}
	return s.Mean
}

// confidenceFor 품질 등급 → 결과 신뢰도
func confidenceFor(q contracts.DataQuality) contracts.Confidence {
	switch q {
	case contracts.QualityHigh:
		return contracts.ConfidenceHigh
	case contracts.QualityMedium:
		return contracts.ConfidenceMedium
	default:
		return contracts.ConfidenceLow
	}
}
