package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/ordercast/internal/association"
	"github.com/wonny/ordercast/internal/category"
	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/features"
	"github.com/wonny/ordercast/internal/promotion"
)

// Dependencies 해석기 협력 객체 (Store 외에는 nil 이면 기본값 사용)
type Dependencies struct {
	Store      contracts.Store
	Registry   *category.Registry
	Extractor  *features.Extractor
	Promotions *promotion.Adjuster
	Booster    *association.Booster // nil → 부스트 없음
	Sink       contracts.FeedbackSink
	Metrics    Metrics
}

// Resolver 발주량 예측 해석기
// ⭐ SSOT: 피처 + 카테고리 전략 + 보정 → 최종 발주 수량 결정은 여기서만
// 식별 오류(상품/카테고리 미인식)만 에러로 반환하고 나머지 결측은 기본값으로 대체
type Resolver struct {
	store      contracts.Store
	registry   *category.Registry
	extractor  *features.Extractor
	promotions *promotion.Adjuster
	booster    *association.Booster
	sink       contracts.FeedbackSink
	metrics    Metrics
	config     Config
	log        zerolog.Logger
}

// NewResolver 새 해석기 생성
func NewResolver(deps Dependencies, log zerolog.Logger) *Resolver {
	return NewResolverWithConfig(DefaultConfig(), deps, log)
}

// NewResolverWithConfig 커스텀 설정으로 해석기 생성
func NewResolverWithConfig(config Config, deps Dependencies, log zerolog.Logger) *Resolver {
	if deps.Registry == nil {
		deps.Registry = category.NewDefaultRegistry(log)
	}
	if deps.Extractor == nil {
		deps.Extractor = features.NewExtractor(deps.Store, deps.Store, log)
	}
	if deps.Promotions == nil {
		deps.Promotions = promotion.NewAdjuster(log)
	}

	return &Resolver{
		store:      deps.Store,
		registry:   deps.Registry,
		extractor:  deps.Extractor,
		promotions: deps.Promotions,
		booster:    deps.Booster,
		sink:       deps.Sink,
		metrics:    deps.Metrics,
		config:     config,
		log:        log.With().Str("component", "predictor.resolver").Logger(),
	}
}

// Predict 단품 1건의 발주 수량 예측
func (r *Resolver) Predict(ctx context.Context, req contracts.PredictRequest) (*contracts.PredictionResult, error) {
	started := time.Now()

	item, categoryID, err := r.identify(ctx, req)
	if err != nil {
		return nil, err
	}

	target := contracts.Day(req.TargetDate)
	result := &contracts.PredictionResult{
		StoreID:      req.StoreID,
		ItemID:       req.ItemID,
		CategoryID:   categoryID,
		TargetDate:   target,
		CurrentStock: req.CurrentStock,
		PendingQty:   req.PendingQty,
	}

	// 1~2. 피처 → 품질 등급 → 블렌딩 (행사 기간은 한 번만 조회해 피처/행사 보정에 공유)
	windows := r.promotionWindows(ctx, req.ItemID, target)
	fs := r.extractor.ExtractWithWindows(ctx, req.ItemID, target, windows)
	strategy := r.registry.Lookup(categoryID)
	result.Strategy = strategy.Name()

	result.Quality = r.config.Quality(fs)
	result.Confidence = confidenceFor(result.Quality)
	result.RawPrediction = rollingMean(fs, 7)

	blended, missing := r.config.Blend(fs, result.Quality)
	result.BlendedPrediction = blended
	for _, m := range missing {
		result.AddDefault(m)
	}

	// 카테고리 전략 (안전재고, 요일 계수, 상한, 발주 생략)
	daily := fs.DailyAverage()
	sres := strategy.Calculate(category.Input{
		CategoryID:    categoryID,
		ItemID:        req.ItemID,
		DailyAverage:  daily,
		ShelfLifeDays: item.ShelfLifeDays,
		CurrentStock:  req.CurrentStock,
		PendingQty:    req.PendingQty,
		TargetDate:    target,
		Features:      fs,
	})
	result.StrategyDetail = sres.Detail

	// 3. 요일 계수
	coef, coefSource := r.weekdayCoefficient(ctx, categoryID, target, sres)
	result.WeekdayCoefficient = coef
	result.WeekdayAdjusted = blended * coef
	result.AddAdjustment("weekday", coef, coefSource)

	// 4. 변동성 → 안전재고 배수
	cv := math.NaN()
	if fs.CV != nil {
		cv = *fs.CV
	} else {
		result.AddDefault("cv")
	}
	volMult, volLabel := VolatilityMultiplier(cv, r.config.MaxVolatilityMultiplier)
	result.VolatilityMultiplier = volMult
	result.AddAdjustment("volatility", volMult, volLabel)

	// 5. 추세
	result.TrendMultiplier = r.config.TrendMultiplier(fs.TrendLabel)
	if fs.Trend == nil {
		result.AddDefault("trend")
	}
	result.AddAdjustment("trend", result.TrendMultiplier, string(fs.TrendLabel))

	// 6. 회전율
	shelfLife := item.ShelfLifeDays
	if shelfLife <= 0 {
		shelfLife = strategy.Profile().DefaultShelfLifeDays
	}
	turnMult, turnLabel := r.config.TurnoverMultiplier(fs.Turnover7, shelfLife, req.CurrentStock, daily)
	result.TurnoverMultiplier = turnMult
	if fs.Turnover7 == nil {
		result.AddDefault("turnover")
	}
	result.AddAdjustment("turnover", turnMult, turnLabel)

	// 7. 폐기율
	wasteMult, wasteLabel := WasteMultiplier(fs.WasteRate30, strategy.Profile().Food)
	result.WasteMultiplier = wasteMult
	if fs.WasteRate30 == nil {
		result.AddDefault("waste_rate")
	}
	result.AddAdjustment("waste", wasteMult, wasteLabel)

	result.AdjustedPrediction = result.WeekdayAdjusted * result.TrendMultiplier * turnMult * wasteMult
	result.SafetyStock = sres.SafetyStock * volMult

	// 8. 기본 필요 수량
	result.BaseOrderQty = result.AdjustedPrediction + result.SafetyStock - req.CurrentStock - req.PendingQty
	need := result.BaseOrderQty

	// 행사 보정
	promo := r.promotion(req, target, windows, fs, strategy)
	result.PromotionFactor = promo.Factor
	result.PromotionState = string(promo.State)
	if promo.State != promotion.StateNone {
		result.AddAdjustment("promotion", promo.Factor, promo.Label)
	}
	if promo.SellThrough != nil {
		result.AddAdjustment("sell_through", *promo.SellThrough, promo.Label)
	}
	if need > 0 {
		need = promo.Apply(need)
	}

	// 연관 부스트
	boost := r.boost(ctx, req.ItemID, categoryID)
	result.AssociationBoost = boost.Boost
	if boost.Boost > 1.0 {
		result.AddAdjustment("association", boost.Boost, boost.Label)
	}
	if need > 0 {
		need *= boost.Boost
	}

	// 발주 단위 올림
	unit := item.OrderUnit
	if unit <= 0 {
		unit = max(r.config.DefaultOrderUnit, 1)
	}
	result.OrderUnit = unit
	order := RoundUpToUnit(need, unit)

	// 최대 재고 상한
	capped := false
	if sres.MaxStock != nil {
		room := RoundDownToUnit(*sres.MaxStock-req.CurrentStock-req.PendingQty, unit)
		if order > room {
			order = room
			capped = true
		}
		result.AddAdjustment("cap", *sres.MaxStock, "max_stock")
	}

	// 발주 불가일
	if sres.SkipOrder {
		order = 0
		result.SkipReason = sres.SkipReason
	}

	result.OrderQty = order
	result.ModelPath = r.modelPath(result, promo, boost, capped, sres.SkipOrder)

	r.log.Debug().
		Str("store_id", req.StoreID).
		Str("item_id", req.ItemID).
		Str("category_id", categoryID).
		Str("strategy", result.Strategy).
		Str("path", result.ModelPath).
		Float64("blended", result.BlendedPrediction).
		Float64("safety", result.SafetyStock).
		Int("order_qty", result.OrderQty).
		Msg("prediction resolved")

	if r.metrics != nil {
		r.metrics.ObservePrediction(result, time.Since(started))
	}
	if r.sink != nil {
		r.sink.Emit(ctx, *result)
	}

	return result, nil
}

// identify 상품/카테고리 식별 (유일한 에러 경로)
func (r *Resolver) identify(ctx context.Context, req contracts.PredictRequest) (*contracts.ItemInfo, string, error) {
	if strings.TrimSpace(req.ItemID) == "" {
		r.observeError("item_not_found")
		return nil, "", contracts.NewItemNotFound(req.ItemID)
	}

	item, err := r.store.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, contracts.ErrItemNotFound) {
			r.observeError("item_not_found")
			return nil, "", contracts.NewItemNotFound(req.ItemID)
		}
		r.observeError("item_lookup")
		return nil, "", fmt.Errorf("lookup item %s: %w", req.ItemID, err)
	}

	categoryID := strings.TrimSpace(req.CategoryID)
	if categoryID == "" {
		categoryID = strings.TrimSpace(item.CategoryID)
	}
	if categoryID == "" {
		r.observeError("category_not_found")
		return nil, "", contracts.NewCategoryNotFound(req.CategoryID)
	}

	return item, categoryID, nil
}

// weekdayCoefficient 전략 지정값 → 매장 학습값 → 1.0
func (r *Resolver) weekdayCoefficient(ctx context.Context, categoryID string, target time.Time, sres category.Result) (float64, string) {
	if sres.WeekdayCoefficient != nil {
		return *sres.WeekdayCoefficient, "strategy"
	}

	coefs, ok, err := r.store.GetWeekdayCoefficients(ctx, categoryID)
	if err != nil {
		r.log.Warn().Err(err).Str("category_id", categoryID).Msg("learned weekday coefficients unavailable")
		return 1.0, "default"
	}
	if !ok {
		return 1.0, "default"
	}

	coef := coefs[target.Weekday()]
	if coef <= 0 {
		return 1.0, "default"
	}
	return coef, "learned"
}

// promotionWindows 행사 기간 조회 (실패 시 행사 없음)
func (r *Resolver) promotionWindows(ctx context.Context, itemID string, target time.Time) contracts.PromotionWindows {
	windows, err := r.store.GetPromotionWindows(ctx, itemID, target)
	if err != nil {
		r.log.Warn().Err(err).Str("item_id", itemID).Msg("promotion windows unavailable")
		return contracts.PromotionWindows{}
	}
	return windows
}

// promotion 행사 상태별 보정 (행사 기간 없으면 중립)
func (r *Resolver) promotion(req contracts.PredictRequest, target time.Time, windows contracts.PromotionWindows, fs *contracts.FeatureSet, strategy category.Strategy) promotion.Adjustment {
	return r.promotions.Adjust(promotion.Input{
		Today:            target,
		Windows:          windows,
		Features:         fs,
		CategoryDefaults: strategy.Profile().PromotionMultipliers,
		CurrentStock:     req.CurrentStock,
		PendingQty:       req.PendingQty,
	})
}

func (r *Resolver) boost(ctx context.Context, itemID, categoryID string) association.Result {
	if r.booster == nil {
		return association.Neutral("disabled")
	}
	return r.booster.Boost(ctx, itemID, categoryID)
}

// modelPath 예: blend_high+weekday+promo_ending+assoc_category+cap
func (r *Resolver) modelPath(res *contracts.PredictionResult, promo promotion.Adjustment, boost association.Result, capped, skipped bool) string {
	parts := []string{"blend_" + string(res.Quality)}
	if res.WeekdayCoefficient != 1.0 {
		parts = append(parts, "weekday")
	}
	if promo.State != promotion.StateNone {
		parts = append(parts, promo.Label)
	}
	if boost.Boost > 1.0 {
		parts = append(parts, boost.Label)
	}
	if capped {
		parts = append(parts, "cap")
	}
	if skipped {
		parts = append(parts, "skip")
	}
	return strings.Join(parts, "+")
}

func (r *Resolver) observeError(kind string) {
	if r.metrics != nil {
		r.metrics.ObserveError(kind)
	}
}

// BatchResult 배치 예측 결과
type BatchResult struct {
	Results []*contracts.PredictionResult
	Failed  map[string]error // item_id → 식별 오류
}

// PredictBatch 한 점포의 요청을 순서대로 예측
// 식별 오류는 건별로 기록하고 계속 진행, 컨텍스트 취소 시 중단
func (r *Resolver) PredictBatch(ctx context.Context, reqs []contracts.PredictRequest) (BatchResult, error) {
	out := BatchResult{
		Results: make([]*contracts.PredictionResult, 0, len(reqs)),
		Failed:  make(map[string]error),
	}

	for _, req := range reqs {
		select {
		case <-ctx.Done():
			r.log.Warn().Msg("context cancelled during batch prediction")
			return out, ctx.Err()
		default:
		}

		res, err := r.Predict(ctx, req)
		if err != nil {
			r.log.Error().Err(err).
				Str("store_id", req.StoreID).
				Str("item_id", req.ItemID).
				Msg("prediction failed")
			out.Failed[req.ItemID] = err
			continue
		}
		out.Results = append(out.Results, res)
	}

	r.log.Info().
		Int("requests", len(reqs)).
		Int("predictions", len(out.Results)).
		Int("failed", len(out.Failed)).
		Msg("batch prediction completed")

	return out, nil
}
