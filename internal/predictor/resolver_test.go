package predictor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ordercast/internal/association"
	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/promotion"
	"github.com/wonny/ordercast/internal/store"
)

// 2026-03-02 = 월요일
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// seed target 이전 days 일 동안 매일 같은 판매/재고 기록
func seed(m *store.MemoryStore, item contracts.ItemInfo, days int, sold, stock float64) {
	m.AddItem(item)
	for i := 1; i <= days; i++ {
		m.AddObservations(contracts.Observation{
			ItemID:     item.ItemID,
			Date:       monday.AddDate(0, 0, -i),
			Sold:       sold,
			Stock:      stock,
			CategoryID: item.CategoryID,
		})
	}
}

type recordingSink struct {
	mu      sync.Mutex
	results []contracts.PredictionResult
}

func (s *recordingSink) Emit(_ context.Context, r contracts.PredictionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

type countingMetrics struct {
	predictions int
	errors      map[string]int
}

func (m *countingMetrics) ObservePrediction(*contracts.PredictionResult, time.Duration) {
	m.predictions++
}

func (m *countingMetrics) ObserveError(kind string) {
	if m.errors == nil {
		m.errors = make(map[string]int)
	}
	m.errors[kind]++
}

func newResolver(m *store.MemoryStore) *Resolver {
	return NewResolver(Dependencies{Store: m}, zerolog.Nop())
}

func TestPredict_SteadyDefaultCategory(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9001", CategoryID: "999", ShelfLifeDays: 30}, 30, 5, 20)

	res, err := newResolver(m).Predict(context.Background(), contracts.PredictRequest{
		StoreID:    "46513",
		ItemID:     "9001",
		TargetDate: monday,
	})
	require.NoError(t, err)

	assert.Equal(t, "default", res.Strategy)
	assert.Equal(t, contracts.QualityHigh, res.Quality)
	assert.Equal(t, contracts.ConfidenceHigh, res.Confidence)
	assert.InDelta(t, 5.0, res.RawPrediction, 1e-9)
	assert.InDelta(t, 5.0, res.BlendedPrediction, 1e-9)
	assert.InDelta(t, 1.0, res.WeekdayCoefficient, 1e-9)
	assert.Equal(t, 1.0, res.VolatilityMultiplier)
	assert.Equal(t, 1.0, res.TrendMultiplier)
	assert.Equal(t, 1.0, res.TurnoverMultiplier)
	assert.Equal(t, 1.0, res.WasteMultiplier)
	assert.InDelta(t, 7.5, res.SafetyStock, 1e-9)
	assert.InDelta(t, 12.5, res.BaseOrderQty, 1e-9)
	assert.Equal(t, 13, res.OrderQty)
	assert.Equal(t, 1, res.OrderUnit)
	assert.Equal(t, "blend_high", res.ModelPath)
	assert.Equal(t, string(promotion.StateNone), res.PromotionState)
	assert.Equal(t, 1.0, res.AssociationBoost)
}

func TestPredict_StockAndPendingReduceOrder(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9001", CategoryID: "999", ShelfLifeDays: 30}, 30, 5, 20)
	r := newResolver(m)

	res, err := r.Predict(context.Background(), contracts.PredictRequest{
		ItemID: "9001", TargetDate: monday, CurrentStock: 6, PendingQty: 3,
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, res.BaseOrderQty, 1e-9)
	assert.Equal(t, 4, res.OrderQty)

	// 재고가 필요량을 넘으면 0 (음수 없음)
	res, err = r.Predict(context.Background(), contracts.PredictRequest{
		ItemID: "9001", TargetDate: monday, CurrentStock: 40,
	})
	require.NoError(t, err)
	assert.Less(t, res.BaseOrderQty, 0.0)
	assert.Equal(t, 0, res.OrderQty)
}

func TestPredict_OrderUnitRoundsUp(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9002", CategoryID: "999", ShelfLifeDays: 30, OrderUnit: 6}, 30, 5, 20)

	res, err := newResolver(m).Predict(context.Background(), contracts.PredictRequest{ItemID: "9002", TargetDate: monday})
	require.NoError(t, err)
	assert.Equal(t, 6, res.OrderUnit)
	assert.Equal(t, 18, res.OrderQty)
}

func TestPredict_OrderUnitDefaultOnlyWhenUnset(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9010", CategoryID: "999", ShelfLifeDays: 30, OrderUnit: 1}, 30, 5, 20)
	seed(m, contracts.ItemInfo{ItemID: "9011", CategoryID: "999", ShelfLifeDays: 30}, 30, 5, 20)

	cfg := DefaultConfig()
	cfg.DefaultOrderUnit = 6
	r := NewResolverWithConfig(cfg, Dependencies{Store: m}, zerolog.Nop())

	// 명시적 낱개(1)는 그대로
	res, err := r.Predict(context.Background(), contracts.PredictRequest{ItemID: "9010", TargetDate: monday})
	require.NoError(t, err)
	assert.Equal(t, 1, res.OrderUnit)
	assert.Equal(t, 13, res.OrderQty)

	// 미설정(0)만 기본 단위
	res, err = r.Predict(context.Background(), contracts.PredictRequest{ItemID: "9011", TargetDate: monday})
	require.NoError(t, err)
	assert.Equal(t, 6, res.OrderUnit)
	assert.Equal(t, 18, res.OrderQty)
}

func TestPredict_AllZeroHistory(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9003", CategoryID: "999"}, 30, 0, 10)

	res, err := newResolver(m).Predict(context.Background(), contracts.PredictRequest{ItemID: "9003", TargetDate: monday})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.BlendedPrediction)
	assert.Equal(t, 0.0, res.SafetyStock)
	assert.Equal(t, 1.0, res.VolatilityMultiplier)
	assert.Equal(t, 0, res.OrderQty)
	assert.Contains(t, res.Defaults, "cv")
}

func TestPredict_NoHistory(t *testing.T) {
	m := store.NewMemoryStore()
	m.AddItem(contracts.ItemInfo{ItemID: "9004", CategoryID: "999"})

	res, err := newResolver(m).Predict(context.Background(), contracts.PredictRequest{ItemID: "9004", TargetDate: monday})
	require.NoError(t, err)
	assert.Equal(t, contracts.QualityNoData, res.Quality)
	assert.Equal(t, contracts.ConfidenceLow, res.Confidence)
	assert.Equal(t, 0, res.OrderQty)
	assert.Equal(t, "blend_no_data", res.ModelPath)
}

func TestPredict_Deterministic(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9001", CategoryID: "999", ShelfLifeDays: 30}, 30, 5, 20)
	r := newResolver(m)
	req := contracts.PredictRequest{StoreID: "46513", ItemID: "9001", TargetDate: monday, CurrentStock: 2}

	first, err := r.Predict(context.Background(), req)
	require.NoError(t, err)
	second, err := r.Predict(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, *first, *second)
}

func TestPredict_TobaccoCap(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "7001", CategoryID: "072"}, 30, 20, 20)
	r := newResolver(m)

	res, err := r.Predict(context.Background(), contracts.PredictRequest{ItemID: "7001", TargetDate: monday, CurrentStock: 28})
	require.NoError(t, err)
	assert.Equal(t, "tobacco", res.Strategy)
	assert.InDelta(t, 30.0, res.SafetyStock, 1e-9)
	assert.Equal(t, 2, res.OrderQty)
	assert.Contains(t, res.PathParts(), "cap")

	// 진열 한도 도달 → 0
	res, err = r.Predict(context.Background(), contracts.PredictRequest{ItemID: "7001", TargetDate: monday, CurrentStock: 30})
	require.NoError(t, err)
	assert.Equal(t, 0, res.OrderQty)
}

func TestPredict_NonOrderDaySkips(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "6001", CategoryID: "006"}, 30, 5, 5)
	r := newResolver(m)

	tuesday := monday.AddDate(0, 0, 1)
	res, err := r.Predict(context.Background(), contracts.PredictRequest{ItemID: "6001", TargetDate: tuesday})
	require.NoError(t, err)
	assert.Equal(t, "ramen", res.Strategy)
	assert.Equal(t, 0, res.OrderQty)
	assert.Equal(t, "non_order_day", res.SkipReason)
	assert.Contains(t, res.PathParts(), "skip")

	res, err = r.Predict(context.Background(), contracts.PredictRequest{ItemID: "6001", TargetDate: monday})
	require.NoError(t, err)
	assert.Empty(t, res.SkipReason)
	assert.Positive(t, res.OrderQty)
}

func TestPredict_RequestCategoryOverridesMaster(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9001", CategoryID: "999"}, 30, 5, 20)

	res, err := newResolver(m).Predict(context.Background(), contracts.PredictRequest{
		ItemID: "9001", CategoryID: "072", TargetDate: monday,
	})
	require.NoError(t, err)
	assert.Equal(t, "072", res.CategoryID)
	assert.Equal(t, "tobacco", res.Strategy)
}

func TestPredict_IdentityErrors(t *testing.T) {
	m := store.NewMemoryStore()
	m.AddItem(contracts.ItemInfo{ItemID: "blank-cat"})
	metrics := &countingMetrics{}
	r := NewResolver(Dependencies{Store: m, Metrics: metrics}, zerolog.Nop())
	ctx := context.Background()

	_, err := r.Predict(ctx, contracts.PredictRequest{ItemID: "", TargetDate: monday})
	assert.True(t, errors.Is(err, contracts.ErrItemNotFound))

	_, err = r.Predict(ctx, contracts.PredictRequest{ItemID: "missing", TargetDate: monday})
	assert.True(t, errors.Is(err, contracts.ErrItemNotFound))
	assert.True(t, contracts.IsIdentityError(err))

	_, err = r.Predict(ctx, contracts.PredictRequest{ItemID: "blank-cat", TargetDate: monday})
	assert.True(t, errors.Is(err, contracts.ErrCategoryNotFound))

	assert.Equal(t, 2, metrics.errors["item_not_found"])
	assert.Equal(t, 1, metrics.errors["category_not_found"])
	assert.Zero(t, metrics.predictions)
}

func TestPredict_UnmappedCategoryFallsBack(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9001", CategoryID: "777"}, 30, 5, 20)

	res, err := newResolver(m).Predict(context.Background(), contracts.PredictRequest{ItemID: "9001", TargetDate: monday})
	require.NoError(t, err)
	assert.Equal(t, "default", res.Strategy)
}

func TestPredict_PromotionEndingShrinksOrder(t *testing.T) {
	m := store.NewMemoryStore()
	item := contracts.ItemInfo{ItemID: "4001", CategoryID: "999", ShelfLifeDays: 30}
	seed(m, item, 30, 4, 20)
	for i := 1; i <= 6; i++ {
		m.AddObservations(contracts.Observation{
			ItemID:        item.ItemID,
			Date:          monday.AddDate(0, 0, -i),
			Sold:          10,
			Stock:         20,
			CategoryID:    item.CategoryID,
			PromotionKind: contracts.PromotionBuyOneGetOne,
		})
	}
	// 내일 종료, 후속 행사 없음
	m.AddPromotion(contracts.PromotionWindow{
		ItemID: item.ItemID,
		Kind:   contracts.PromotionBuyOneGetOne,
		Start:  monday.AddDate(0, 0, -6),
		End:    monday.AddDate(0, 0, 1),
		Active: true,
	})

	res, err := newResolver(m).Predict(context.Background(), contracts.PredictRequest{ItemID: item.ItemID, TargetDate: monday})
	require.NoError(t, err)

	assert.Equal(t, string(promotion.StateEndingSoon), res.PromotionState)
	assert.Equal(t, 0.1, res.PromotionFactor)
	assert.Contains(t, res.PathParts(), "promo_ending")
	require.Positive(t, res.BaseOrderQty)
	assert.Equal(t, RoundUpToUnit(0.1*res.BaseOrderQty, 1), res.OrderQty)
	assert.Less(t, res.OrderQty, RoundUpToUnit(res.BaseOrderQty, 1))
}

type countingPromoStore struct {
	*store.MemoryStore
	promoReads int
}

func (c *countingPromoStore) GetPromotionWindows(ctx context.Context, itemID string, target time.Time) (contracts.PromotionWindows, error) {
	c.promoReads++
	return c.MemoryStore.GetPromotionWindows(ctx, itemID, target)
}

func TestPredict_ReadsPromotionWindowsOnce(t *testing.T) {
	m := store.NewMemoryStore()
	item := contracts.ItemInfo{ItemID: "4002", CategoryID: "999", ShelfLifeDays: 30}
	seed(m, item, 30, 4, 20)
	m.AddPromotion(contracts.PromotionWindow{
		ItemID: item.ItemID,
		Kind:   contracts.PromotionBuyOneGetOne,
		Start:  monday.AddDate(0, 0, -6),
		End:    monday.AddDate(0, 0, 1),
		Active: true,
	})
	cs := &countingPromoStore{MemoryStore: m}

	res, err := NewResolver(Dependencies{Store: cs}, zerolog.Nop()).Predict(context.Background(),
		contracts.PredictRequest{ItemID: item.ItemID, TargetDate: monday})
	require.NoError(t, err)

	assert.Equal(t, 1, cs.promoReads)
	assert.Equal(t, string(promotion.StateEndingSoon), res.PromotionState)
}

func TestPredict_AssociationBoost(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9001", CategoryID: "999", ShelfLifeDays: 30}, 30, 5, 20)
	m.AddRule(contracts.AssociationRule{
		Level:      contracts.AssociationCategory,
		TriggerKey: "049",
		BoostedKey: "999",
		Confidence: 0.5,
		Lift:       2.0,
	})
	m.SetTriggerRatio(contracts.AssociationCategory, "049", 2.0)

	r := NewResolver(Dependencies{
		Store:   m,
		Booster: association.NewBooster(m, zerolog.Nop()),
	}, zerolog.Nop())

	res, err := r.Predict(context.Background(), contracts.PredictRequest{ItemID: "9001", TargetDate: monday})
	require.NoError(t, err)

	assert.InDelta(t, 1.15, res.AssociationBoost, 1e-9)
	assert.Contains(t, res.PathParts(), "assoc_category")
	assert.Equal(t, RoundUpToUnit(res.BaseOrderQty*1.15, 1), res.OrderQty)
}

func TestPredict_EmitsToSinkAndMetrics(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9001", CategoryID: "999", ShelfLifeDays: 30}, 30, 5, 20)
	sink := &recordingSink{}
	metrics := &countingMetrics{}

	r := NewResolver(Dependencies{Store: m, Sink: sink, Metrics: metrics}, zerolog.Nop())
	res, err := r.Predict(context.Background(), contracts.PredictRequest{ItemID: "9001", TargetDate: monday})
	require.NoError(t, err)

	require.Len(t, sink.results, 1)
	assert.Equal(t, *res, sink.results[0])
	assert.Equal(t, 1, metrics.predictions)
}

func TestPredictBatch(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9001", CategoryID: "999", ShelfLifeDays: 30}, 30, 5, 20)
	seed(m, contracts.ItemInfo{ItemID: "7001", CategoryID: "072"}, 30, 20, 20)
	r := newResolver(m)

	reqs := []contracts.PredictRequest{
		{ItemID: "9001", TargetDate: monday},
		{ItemID: "ghost", TargetDate: monday},
		{ItemID: "7001", TargetDate: monday, CurrentStock: 30},
	}

	out, err := r.PredictBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "9001", out.Results[0].ItemID)
	assert.Equal(t, "7001", out.Results[1].ItemID)
	require.Contains(t, out.Failed, "ghost")
	assert.True(t, errors.Is(out.Failed["ghost"], contracts.ErrItemNotFound))
}

func TestPredictBatch_ContextCancelled(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "9001", CategoryID: "999"}, 30, 5, 20)
	r := newResolver(m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := r.PredictBatch(ctx, []contracts.PredictRequest{{ItemID: "9001", TargetDate: monday}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.Results)
}

func TestExplain(t *testing.T) {
	m := store.NewMemoryStore()
	seed(m, contracts.ItemInfo{ItemID: "7001", CategoryID: "072"}, 30, 20, 20)

	res, err := newResolver(m).Predict(context.Background(), contracts.PredictRequest{ItemID: "7001", TargetDate: monday, CurrentStock: 28})
	require.NoError(t, err)

	out := Explain(res)
	assert.True(t, strings.HasPrefix(out, "item 7001 (category 072, strategy tobacco) for 2026-03-02"))
	assert.Contains(t, out, "order qty 2 (unit 1)")
	assert.Contains(t, out, "dynamic_multiplier")
	assert.Contains(t, out, "volatility")

	assert.Empty(t, Explain(nil))
}
