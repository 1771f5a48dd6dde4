package features

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/ordercast/internal/contracts"
)

// Config 피처 추출 설정
type Config struct {
	HorizonDays          int     // 조회 구간 (lag 365 포함)
	SameWeekdayWeeks     int     // 동일 요일 평균 주 수
	EWMWindow            int     // EWM 계산 구간
	CVWindow             int     // 변동계수 구간
	TrendThreshold       float64 // 추세 판정 (±)
	StrongTrendThreshold float64 // 강한 추세 판정 (±)
	StatsWindow          int     // 회전율/폐기율/품절 집계 구간
	FullCaseUnits        float64 // 보루(10갑) 단위 판매 판정 수량
	MinLiftPromoDays     int     // 행사 효과 측정 최소 행사일
	MinLiftBaseDays      int     // 행사 효과 측정 최소 비행사일
}

// DefaultConfig 기본 설정
func DefaultConfig() Config {
	return Config{
		HorizonDays:          366,
		SameWeekdayWeeks:     4,
		EWMWindow:            28,
		CVWindow:             28,
		TrendThreshold:       0.10,
		StrongTrendThreshold: 0.20,
		StatsWindow:          30,
		FullCaseUnits:        10,
		MinLiftPromoDays:     3,
		MinLiftBaseDays:      7,
	}
}

// Extractor 시계열 피처 추출기
// ⭐ SSOT: lag/rolling 피처 계산은 여기서만
type Extractor struct {
	series contracts.SeriesReader
	promos contracts.PromotionReader
	config Config
	log    zerolog.Logger
}

// NewExtractor 새 추출기 생성
func NewExtractor(series contracts.SeriesReader, promos contracts.PromotionReader, log zerolog.Logger) *Extractor {
	return NewExtractorWithConfig(DefaultConfig(), series, promos, log)
}

// NewExtractorWithConfig 커스텀 설정으로 추출기 생성
func NewExtractorWithConfig(config Config, series contracts.SeriesReader, promos contracts.PromotionReader, log zerolog.Logger) *Extractor {
	return &Extractor{
		series: series,
		promos: promos,
		config: config,
		log:    log.With().Str("component", "features.extractor").Logger(),
	}
}

// Extract 기준일 전일까지의 관측치로 FeatureSet 생성 (행사 기간도 직접 조회)
// 데이터가 없거나 조회가 실패해도 에러 없이 no-data FeatureSet 반환
func (e *Extractor) Extract(ctx context.Context, itemID string, target time.Time) *contracts.FeatureSet {
	var windows contracts.PromotionWindows
	if e.promos != nil {
		var err error
		windows, err = e.promos.GetPromotionWindows(ctx, itemID, target)
		if err != nil {
			e.log.Warn().Err(err).
				Str("item_id", itemID).
				Msg("promotion lookup failed, ignoring promotion windows")
			windows = contracts.PromotionWindows{}
		}
	}
	return e.ExtractWithWindows(ctx, itemID, target, windows)
}

// ExtractWithWindows 호출자가 이미 조회한 행사 기간으로 FeatureSet 생성
func (e *Extractor) ExtractWithWindows(ctx context.Context, itemID string, target time.Time, windows contracts.PromotionWindows) *contracts.FeatureSet {
	end := contracts.Day(target).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(e.config.HorizonDays - 1))

	obs, err := e.series.GetObservations(ctx, itemID, start, end)
	if err != nil {
		e.log.Warn().Err(err).
			Str("item_id", itemID).
			Msg("observation lookup failed, treating as no data")
		obs = nil
	}

	fs := e.Build(itemID, target, obs, windows)

	e.log.Debug().
		Str("item_id", itemID).
		Str("target_date", target.Format(contracts.DateLayout)).
		Bool("no_data", fs.NoData).
		Int("history_days", fs.HistoryDays).
		Int("observed_days", fs.ObservedDays).
		Str("lag_confidence", string(fs.LagConfidence)).
		Msg("features extracted")

	return fs
}

// Build 관측치 슬라이스에서 FeatureSet 계산 (순수 함수)
func (e *Extractor) Build(itemID string, target time.Time, obs []contracts.Observation, windows contracts.PromotionWindows) *contracts.FeatureSet {
	fs := &contracts.FeatureSet{
		ItemID:        itemID,
		TargetDate:    contracts.Day(target),
		Lags:          make(map[int]*float64, len(contracts.LagOffsets)),
		Rolling:       make(map[int]contracts.RollingStats, len(contracts.RollingWindows)),
		PromotionLift: make(map[contracts.PromotionKind]float64),
		LagConfidence: contracts.LagConfidenceLow,
		TrendLabel:    contracts.TrendStable,
	}

	s := buildSeries(obs, target, windows, e.config.HorizonDays)
	if s.empty() {
		fs.NoData = true
		for _, off := range contracts.LagOffsets {
			fs.Lags[off] = nil
		}
		for _, w := range contracts.RollingWindows {
			fs.Rolling[w] = contracts.RollingStats{Window: w}
		}
		return fs
	}

	fs.HistoryDays = len(s.points)
	for _, p := range s.tail(e.config.CVWindow) {
		if p.Present {
			fs.ObservedDays++
		}
	}

	e.applyLags(fs, s)
	e.applyRolling(fs, s)
	e.applyTrend(fs)
	e.applyPromotion(fs, s)
	e.applyInventory(fs, s)

	return fs
}

// applyLags lag 값, 동일 요일 평균, 전주 대비 변화율
func (e *Extractor) applyLags(fs *contracts.FeatureSet, s *dailySeries) {
	target := fs.TargetDate

	for _, off := range contracts.LagOffsets {
		if o, ok := s.lookup(target.AddDate(0, 0, -off)); ok {
			fs.Lags[off] = contracts.Float64(o.Sold)
		} else {
			fs.Lags[off] = nil
		}
	}

	// 동일 요일 (최근 N주): 관측 구간 안의 결측일은 0, 행사일 제외 → 부족하면 행사 포함
	var filtered, all []float64
	for k := 1; k <= e.config.SameWeekdayWeeks; k++ {
		p, ok := s.at(target.AddDate(0, 0, -7*k))
		if !ok {
			continue
		}
		all = append(all, p.Sold)
		if !p.Promo {
			filtered = append(filtered, p.Sold)
		}
	}
	if m, ok := Mean(filtered); ok {
		fs.SameWeekdayAvg = contracts.Float64(m)
		fs.SameWeekdayN = len(filtered)
	} else if m, ok := Mean(all); ok {
		fs.SameWeekdayAvg = contracts.Float64(m)
		fs.SameWeekdayN = len(all)
	}

	// 전주 대비: 최근 7일 합 vs 그 이전 7일 합
	if len(s.points) >= 14 {
		last := Sum(s.values(7))
		prev := Sum(s.values(14)[:7])
		if prev > 0 {
			fs.WoWChange = contracts.Float64((last - prev) / prev)
		}
	}

	switch {
	case fs.Lags[7] != nil && fs.Lags[14] != nil && fs.Lags[28] != nil && fs.SameWeekdayN >= 3:
		fs.LagConfidence = contracts.LagConfidenceHigh
	case fs.Lags[7] != nil || fs.Lags[1] != nil:
		fs.LagConfidence = contracts.LagConfidenceMedium
	default:
		fs.LagConfidence = contracts.LagConfidenceLow
	}
}

// applyRolling 구간별 평균/표준편차/최소/최대, EWM, CV
func (e *Extractor) applyRolling(fs *contracts.FeatureSet, s *dailySeries) {
	values := s.values(0)

	for _, w := range contracts.RollingWindows {
		mean, std, minV, maxV, n := Rolling(values, w)
		fs.Rolling[w] = contracts.RollingStats{
			Window: w,
			Days:   n,
			Mean:   mean,
			Std:    std,
			Min:    minV,
			Max:    maxV,
		}
	}

	ewmInput := s.values(e.config.EWMWindow)
	if v, ok := EWM(ewmInput, 7); ok {
		fs.EWM7 = contracts.Float64(v)
	}
	if v, ok := EWM(ewmInput, 14); ok {
		fs.EWM14 = contracts.Float64(v)
	}

	cvStats := fs.Rolling[e.config.CVWindow]
	if cvStats.Days > 0 && cvStats.Mean > 0 {
		fs.CV = contracts.Float64(cvStats.Std / cvStats.Mean)
	}
}

// applyTrend (7일 평균 - 28일 평균) / 28일 평균
func (e *Extractor) applyTrend(fs *contracts.FeatureSet) {
	mean28 := fs.Mean(28)
	if mean28 <= 0 {
		return
	}

	slope := (fs.Mean(7) - mean28) / mean28
	fs.Trend = contracts.Float64(slope)
	fs.TrendLabel = ClassifyTrend(slope, e.config.TrendThreshold, e.config.StrongTrendThreshold)
}

// ClassifyTrend 추세 기울기 구간 판정
func ClassifyTrend(slope, threshold, strong float64) contracts.TrendLabel {
	switch {
	case slope >= strong:
		return contracts.TrendStrongUp
	case slope >= threshold:
		return contracts.TrendUp
	case slope <= -strong:
		return contracts.TrendStrongDown
	case slope <= -threshold:
		return contracts.TrendDown
	default:
		return contracts.TrendStable
	}
}

// applyPromotion 행사/비행사 평균과 행사 유형별 실측 배수
func (e *Extractor) applyPromotion(fs *contracts.FeatureSet, s *dailySeries) {
	var promo, base []float64
	byKind := make(map[contracts.PromotionKind][]float64)

	for _, p := range s.tail(90) {
		if !p.Present {
			continue
		}
		if p.Promo {
			promo = append(promo, p.Sold)
			if p.Obs.OnPromotion() {
				byKind[p.Obs.PromotionKind] = append(byKind[p.Obs.PromotionKind], p.Sold)
			}
		} else {
			base = append(base, p.Sold)
		}
	}

	if m, ok := Mean(promo); ok {
		fs.PromoAvg = contracts.Float64(m)
	}
	baseAvg, hasBase := Mean(base)
	if hasBase {
		fs.NonPromoAvg = contracts.Float64(baseAvg)
	}

	if hasBase && baseAvg > 0 && len(base) >= e.config.MinLiftBaseDays {
		for kind, vals := range byKind {
			if len(vals) < e.config.MinLiftPromoDays {
				continue
			}
			m, _ := Mean(vals)
			fs.PromotionLift[kind] = m / baseAvg
		}
	}

	for _, p := range s.tail(7) {
		if p.Promo {
			fs.PromoDaysLast7++
		}
	}
}

// applyInventory 회전율(7일), 폐기율/보루 판매/품절 일수(30일)
func (e *Extractor) applyInventory(fs *contracts.FeatureSet, s *dailySeries) {
	var sold7, stock7 float64
	var n7 int
	for _, p := range s.tail(7) {
		if !p.Present {
			continue
		}
		sold7 += p.Obs.Sold
		stock7 += p.Obs.Stock
		n7++
	}
	if n7 > 0 && stock7 > 0 {
		avgStock := stock7 / float64(n7)
		fs.Turnover7 = contracts.Float64(sold7 / avgStock)
	}

	var sold30, disposed30 float64
	for _, p := range s.tail(e.config.StatsWindow) {
		if !p.Present {
			continue
		}
		sold30 += p.Obs.Sold
		disposed30 += p.Obs.Disposed
		if p.Obs.Sold >= e.config.FullCaseUnits {
			fs.FullCaseDays30++
		}
		if p.Obs.Stock <= 0 {
			fs.StockoutDays30++
		}
	}
	if sold30+disposed30 > 0 {
		fs.WasteRate30 = contracts.Float64(disposed30 / (sold30 + disposed30))
	}
}
