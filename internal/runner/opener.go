package runner

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/store"
	"github.com/wonny/ordercast/pkg/config"
	"github.com/wonny/ordercast/pkg/database"
)

// Opener 점포 코드 → 저장소
type Opener interface {
	// Open 점포 저장소와 해제 함수 (해제할 것이 없으면 no-op)
	Open(ctx context.Context, storeID string) (contracts.Store, func() error, error)
}

// StoreFactory 설정된 백엔드로 점포 저장소를 여는 Opener
// ⭐ SSOT: 백엔드 선택(postgres/sqlite/memory)은 여기서만
type StoreFactory struct {
	backend     string
	sqliteDir   string
	busyTimeout int
	pool        *pgxpool.Pool
	ruleCache   store.RuleCache
	cacheTTL    time.Duration

	mu     sync.RWMutex
	memory map[string]*store.MemoryStore

	log zerolog.Logger
}

// NewStoreFactory 새 팩토리 생성
// pool 은 postgres 백엔드에서만, ruleCache 는 nil 이면 캐시 없이 조회
func NewStoreFactory(cfg *config.Config, pool *pgxpool.Pool, ruleCache store.RuleCache, log zerolog.Logger) *StoreFactory {
	return &StoreFactory{
		backend:     cfg.Store.Backend,
		sqliteDir:   cfg.SQLite.Dir,
		busyTimeout: cfg.SQLite.BusyTimeoutMS,
		pool:        pool,
		ruleCache:   ruleCache,
		cacheTTL:    cfg.Engine.CacheTTL,
		memory:      make(map[string]*store.MemoryStore),
		log:         log.With().Str("component", "runner.factory").Logger(),
	}
}

// RegisterMemory memory 백엔드용 점포 등록 (데모/테스트)
func (f *StoreFactory) RegisterMemory(storeID string, m *store.MemoryStore) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memory[storeID] = m
}

// Open Opener 구현
func (f *StoreFactory) Open(ctx context.Context, storeID string) (contracts.Store, func() error, error) {
	noop := func() error { return nil }

	var (
		st      contracts.Store
		closeFn = noop
	)

	switch f.backend {
	case config.BackendMemory:
		f.mu.RLock()
		m, ok := f.memory[storeID]
		f.mu.RUnlock()
		if !ok {
			return nil, nil, fmt.Errorf("store %s: no memory fixture registered", storeID)
		}
		st = m

	case config.BackendSQLite:
		path := database.SQLitePath(f.sqliteDir, storeID)
		if _, err := os.Stat(path); err != nil {
			return nil, nil, fmt.Errorf("store %s: data file: %w", storeID, err)
		}
		db, err := database.OpenSQLite(path, database.WithBusyTimeout(f.busyTimeout))
		if err != nil {
			return nil, nil, fmt.Errorf("store %s: %w", storeID, err)
		}
		s := store.NewSQLiteStore(db, f.log)
		st, closeFn = s, s.Close

	case config.BackendPostgres:
		if f.pool == nil {
			return nil, nil, fmt.Errorf("store %s: postgres pool not configured", storeID)
		}
		st = store.NewPostgresStore(f.pool, storeID, f.log)

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", f.backend)
	}

	if f.ruleCache != nil {
		st = store.NewCachedRules(st, f.ruleCache, storeID, f.cacheTTL, f.log)
	}

	f.log.Debug().Str("store_id", storeID).Str("backend", f.backend).Msg("store opened")
	return st, closeFn, nil
}

var _ Opener = (*StoreFactory)(nil)
