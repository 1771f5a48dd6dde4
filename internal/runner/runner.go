package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/predictor"
)

// Config 배치 실행 설정
type Config struct {
	Concurrency int // 동시에 처리할 점포 수
}

// DefaultConfig 기본 설정
func DefaultConfig() Config {
	return Config{Concurrency: 4}
}

// StoreRun 점포 1곳의 배치 결과
type StoreRun struct {
	StoreID    string                        `json:"store_id"`
	Requested  int                           `json:"requested"`
	Results    []*contracts.PredictionResult `json:"results"`
	Failed     map[string]string             `json:"failed,omitempty"` // item_id → 사유
	OrderTotal int                           `json:"order_total"`
	Duration   time.Duration                 `json:"duration"`
	Error      string                        `json:"error,omitempty"`
}

// Summary 배치 1회 결과
type Summary struct {
	RunID      string     `json:"run_id"`
	TargetDate time.Time  `json:"target_date"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Stores     []StoreRun `json:"stores"`
}

// Predicted 전체 예측 건수
func (s *Summary) Predicted() int {
	n := 0
	for _, st := range s.Stores {
		n += len(st.Results)
	}
	return n
}

// handle 열린 점포 저장소와 해석기
type handle struct {
	store    contracts.Store
	resolver *predictor.Resolver
	close    func() error
}

// Runner 점포별 발주 예측 배치
// ⭐ SSOT: 점포 간 병렬, 점포 내 상품은 순차
type Runner struct {
	opener Opener
	engine *Engine
	config Config
	log    zerolog.Logger

	mu      sync.Mutex
	handles map[string]*handle
}

// New 새 러너 생성
func New(opener Opener, engine *Engine, log zerolog.Logger) *Runner {
	return NewWithConfig(DefaultConfig(), opener, engine, log)
}

// NewWithConfig 커스텀 설정으로 러너 생성
func NewWithConfig(config Config, opener Opener, engine *Engine, log zerolog.Logger) *Runner {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Runner{
		opener:  opener,
		engine:  engine,
		config:  config,
		log:     log.With().Str("component", "runner").Logger(),
		handles: make(map[string]*handle),
	}
}

// acquire 점포 핸들 (처음 요청 시 열고 이후 재사용)
func (r *Runner) acquire(ctx context.Context, storeID string) (*handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[storeID]; ok {
		return h, nil
	}

	st, closeFn, err := r.opener.Open(ctx, storeID)
	if err != nil {
		return nil, err
	}
	h := &handle{store: st, resolver: r.engine.Resolver(st), close: closeFn}
	r.handles[storeID] = h
	return h, nil
}

// Close 열린 점포 저장소 모두 해제
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for id, h := range r.handles {
		if err := h.close(); err != nil {
			errs = append(errs, fmt.Errorf("close store %s: %w", id, err))
		}
		delete(r.handles, id)
	}
	return errors.Join(errs...)
}

// Run 점포 목록 배치 예측
// 한 점포 실패는 다른 점포에 영향 없음. 실패한 점포가 있으면 요약과 함께 에러 반환
func (r *Runner) Run(ctx context.Context, storeIDs []string, target time.Time) (*Summary, error) {
	target = contracts.Day(target)
	summary := &Summary{
		RunID:      uuid.NewString(),
		TargetDate: target,
		StartedAt:  time.Now(),
		Stores:     make([]StoreRun, len(storeIDs)),
	}
	log := r.log.With().Str("run_id", summary.RunID).Time("target_date", target).Logger()
	log.Info().Int("stores", len(storeIDs)).Msg("order prediction run started")

	var g errgroup.Group
	g.SetLimit(r.config.Concurrency)

	for i, storeID := range storeIDs {
		i, storeID := i, storeID
		g.Go(func() error {
			run := r.runStore(ctx, storeID, target)
			summary.Stores[i] = run
			if run.Error != "" {
				return fmt.Errorf("store %s: %s", storeID, run.Error)
			}
			return nil
		})
	}
	err := g.Wait()

	sort.SliceStable(summary.Stores, func(i, j int) bool {
		return summary.Stores[i].StoreID < summary.Stores[j].StoreID
	})
	summary.FinishedAt = time.Now()

	event := log.Info()
	if err != nil {
		event = log.Error().Err(err)
	}
	event.
		Int("predicted", summary.Predicted()).
		Dur("duration", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("order prediction run finished")

	return summary, err
}

func (r *Runner) runStore(ctx context.Context, storeID string, target time.Time) StoreRun {
	started := time.Now()
	run := StoreRun{StoreID: storeID, Failed: make(map[string]string)}
	defer func() { run.Duration = time.Since(started) }()

	h, err := r.acquire(ctx, storeID)
	if err != nil {
		run.Error = err.Error()
		r.log.Error().Err(err).Str("store_id", storeID).Msg("open store failed")
		return run
	}

	reqs, failed, err := r.buildRequests(ctx, h.store, storeID, target)
	if err != nil {
		run.Error = err.Error()
		r.log.Error().Err(err).Str("store_id", storeID).Msg("build requests failed")
		return run
	}
	for id, e := range failed {
		run.Failed[id] = e.Error()
	}
	run.Requested = len(reqs) + len(failed)

	batch, err := h.resolver.PredictBatch(ctx, reqs)
	run.Results = batch.Results
	for id, e := range batch.Failed {
		run.Failed[id] = e.Error()
	}
	for _, res := range batch.Results {
		run.OrderTotal += res.OrderQty
	}
	if err != nil {
		run.Error = err.Error()
	}

	r.log.Info().
		Str("store_id", storeID).
		Int("requested", run.Requested).
		Int("predicted", len(run.Results)).
		Int("failed", len(run.Failed)).
		Int("order_total", run.OrderTotal).
		Msg("store batch completed")

	return run
}

// buildRequests 상품 마스터 + 재고 현황으로 예측 요청 생성
// 재고 조회 실패 상품은 요청에서 빠지고 failed 로 반환
func (r *Runner) buildRequests(ctx context.Context, st contracts.Store, storeID string, target time.Time) ([]contracts.PredictRequest, map[string]error, error) {
	items, err := st.ListItems(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list items: %w", err)
	}

	reqs := make([]contracts.PredictRequest, 0, len(items))
	failed := make(map[string]error)
	for _, item := range items {
		inv, err := st.GetInventory(ctx, item.ItemID, target)
		if err != nil {
			failed[item.ItemID] = fmt.Errorf("inventory: %w", err)
			continue
		}
		reqs = append(reqs, contracts.PredictRequest{
			StoreID:      storeID,
			ItemID:       item.ItemID,
			TargetDate:   target,
			CurrentStock: inv.Stock,
			PendingQty:   inv.PendingQty,
		})
	}
	return reqs, failed, nil
}

// ItemQuery 단품 예측 조회 (재고 미지정 시 저장소 재고 사용)
type ItemQuery struct {
	StoreID    string
	ItemID     string
	CategoryID string
	TargetDate time.Time
	Inventory  *contracts.Inventory
}

// PredictItem 단품 1건 예측 (CLI predict/explain, API)
func (r *Runner) PredictItem(ctx context.Context, q ItemQuery) (*contracts.PredictionResult, error) {
	h, err := r.acquire(ctx, q.StoreID)
	if err != nil {
		return nil, err
	}

	target := contracts.Day(q.TargetDate)
	inv := q.Inventory
	if inv == nil {
		got, err := h.store.GetInventory(ctx, q.ItemID, target)
		if err != nil {
			return nil, fmt.Errorf("inventory: %w", err)
		}
		inv = &got
	}

	return h.resolver.Predict(ctx, contracts.PredictRequest{
		StoreID:      q.StoreID,
		ItemID:       q.ItemID,
		CategoryID:   q.CategoryID,
		TargetDate:   target,
		CurrentStock: inv.Stock,
		PendingQty:   inv.PendingQty,
	})
}
