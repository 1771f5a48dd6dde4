package runner

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/ordercast/internal/association"
	"github.com/wonny/ordercast/internal/category"
	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/feedback"
	"github.com/wonny/ordercast/internal/predictor"
	"github.com/wonny/ordercast/internal/promotion"
	"github.com/wonny/ordercast/pkg/config"
)

// Engine 점포 공통 구성요소 (카테고리 레지스트리, 행사 보정, 설정, 싱크)
// 점포별 해석기는 Resolver 로 조립
type Engine struct {
	registry   *category.Registry
	promotions *promotion.Adjuster
	predictor  predictor.Config
	assoc      association.Config
	sink       contracts.FeedbackSink
	metrics    predictor.Metrics
	log        zerolog.Logger
}

// NewEngine 설정으로 엔진 생성
// 카테고리 프로파일 파일이 잘못되면 시작 시 실패
func NewEngine(cfg *config.Config, sink contracts.FeedbackSink, metrics predictor.Metrics, log zerolog.Logger) (*Engine, error) {
	profiles, err := category.LoadProfiles(cfg.Engine.CategoryConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load category profiles: %w", err)
	}
	registry, err := category.NewRegistry(profiles, log)
	if err != nil {
		return nil, fmt.Errorf("build category registry: %w", err)
	}

	pcfg := predictor.DefaultConfig()
	pcfg.DefaultOrderUnit = cfg.Engine.OrderUnitDefault

	acfg := association.DefaultConfig()
	acfg.Enabled = cfg.Association.Enabled
	acfg.MinLift = cfg.Association.MinLift
	acfg.MinConfidence = cfg.Association.MinConfidence
	acfg.MaxBoost = cfg.Association.MaxBoost
	acfg.LookbackDays = cfg.Association.LookbackDays
	acfg.TTL = cfg.Engine.CacheTTL

	if sink == nil {
		sink = feedback.NopSink{}
	}

	return &Engine{
		registry:   registry,
		promotions: promotion.NewAdjuster(log),
		predictor:  pcfg,
		assoc:      acfg,
		sink:       sink,
		metrics:    metrics,
		log:        log,
	}, nil
}

// Registry 카테고리 레지스트리
func (e *Engine) Registry() *category.Registry {
	return e.registry
}

// Resolver 점포 저장소에 묶인 해석기 (연관 규칙 캐시는 해석기마다 별도)
func (e *Engine) Resolver(st contracts.Store) *predictor.Resolver {
	return predictor.NewResolverWithConfig(e.predictor, predictor.Dependencies{
		Store:      st,
		Registry:   e.registry,
		Promotions: e.promotions,
		Booster:    association.NewBoosterWithConfig(e.assoc, st, nil, e.log),
		Sink:       e.sink,
		Metrics:    e.metrics,
	}, e.log)
}
