package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/feedback"
	"github.com/wonny/ordercast/internal/predictor"
	"github.com/wonny/ordercast/internal/runner"
	"github.com/wonny/ordercast/internal/store"
	"github.com/wonny/ordercast/pkg/config"
	"github.com/wonny/ordercast/pkg/database"
	"github.com/wonny/ordercast/pkg/logger"
	"github.com/wonny/ordercast/pkg/metrics"
	"github.com/wonny/ordercast/pkg/redis"
)

// app 커맨드 공통 의존성
// ⭐ SSOT: 구성요소 조립(wiring)은 여기서만
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB  // postgres 백엔드 또는 피드백 저장 시
	redis    *redis.Client // 비활성이면 no-op
	kafka    *feedback.KafkaSink
	registry *prometheus.Registry
	engine   *runner.Engine
	factory  *runner.StoreFactory
	runner   *runner.Runner
	stores   []string
}

// loadConfig 환경 설정 + 전역 플래그
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if demo {
		cfg.Store.Backend = config.BackendMemory
	} else if backend != "" {
		cfg.Store.Backend = backend
	}
	if len(storeIDs) > 0 {
		cfg.Store.StoreIDs = storeIDs
	}
	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}
	return cfg, nil
}

// newApp 설정에 따라 저장소/싱크/지표/엔진 조립
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)
	zl := log.Zerolog()
	a := &app{cfg: cfg, log: log, stores: cfg.Store.StoreIDs}

	// PostgreSQL: 저장소 백엔드 또는 예측 로그 저장
	needDB := cfg.Store.Backend == config.BackendPostgres ||
		(cfg.Feedback.Enabled && cfg.Database.URL != "")
	if needDB {
		a.db, err = database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		log.Info("Connected to database")
	}

	// Redis: 연관 규칙 캐시
	a.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	var ruleCache store.RuleCache
	if a.redis.Enabled() {
		ruleCache = redis.NewCache(a.redis, "ordercast")
	}

	sink, err := a.buildSink()
	if err != nil {
		a.close()
		return nil, err
	}

	var recorder predictor.Metrics
	if cfg.MetricsEnabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewWithRegistry(a.registry)
	}

	a.engine, err = runner.NewEngine(cfg, sink, recorder, zl)
	if err != nil {
		a.close()
		return nil, err
	}

	a.factory = runner.NewStoreFactory(cfg, a.pool(), ruleCache, zl)
	if cfg.Store.Backend == config.BackendMemory {
		a.factory.RegisterMemory(demoStoreID, newDemoStore(today()))
		if len(a.stores) == 0 || demo {
			a.stores = []string{demoStoreID}
		}
	}
	a.runner = runner.New(a.factory, a.engine, zl)

	log.WithFields(map[string]interface{}{
		"backend":  cfg.Store.Backend,
		"stores":   len(a.stores),
		"feedback": cfg.Feedback.Enabled,
		"redis":    a.redis.Enabled(),
	}).Debug("Application wired")

	return a, nil
}

// buildSink 피드백 싱크 (DB 로그 + Kafka), 비활성이면 NopSink
func (a *app) buildSink() (contracts.FeedbackSink, error) {
	if !a.cfg.Feedback.Enabled {
		return feedback.NopSink{}, nil
	}

	var sinks []contracts.FeedbackSink
	if a.db != nil {
		sinks = append(sinks, feedback.NewRepository(a.db.Pool, a.log.Zerolog()))
	}
	if len(a.cfg.Feedback.KafkaBrokers) > 0 {
		kcfg := feedback.DefaultKafkaConfig()
		kcfg.Brokers = a.cfg.Feedback.KafkaBrokers
		kcfg.Topic = a.cfg.Feedback.KafkaTopic

		k, err := feedback.NewKafkaSink(kcfg, a.log.Zerolog())
		if err != nil {
			return nil, fmt.Errorf("kafka sink: %w", err)
		}
		a.kafka = k
		sinks = append(sinks, k)
	}
	return feedback.NewMultiSink(sinks...), nil
}

// close 역순으로 해제 (부분 초기화 상태에서도 안전)
func (a *app) close() {
	if a.runner != nil {
		if err := a.runner.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close stores")
		}
	}
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to flush kafka sink")
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// pool 공용 커넥션 풀 (DB 미사용이면 nil)
func (a *app) pool() *pgxpool.Pool {
	if a.db == nil {
		return nil
	}
	return a.db.Pool
}

// defaultStore 단품 조회 기본 점포
func (a *app) defaultStore() string {
	if len(a.stores) > 0 {
		return a.stores[0]
	}
	return ""
}
