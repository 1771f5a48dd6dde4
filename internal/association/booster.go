package association

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/ordercast/internal/contracts"
)

// Config 연관 부스트 설정
type Config struct {
	Enabled       bool
	MinLift       float64       // 규칙 최소 lift
	MinConfidence float64       // 규칙 최소 confidence
	MaxBoost      float64       // 부스트 상한
	LookbackDays  int           // 트리거 최근 평균 일수
	BoostScale    float64       // (lift-1) × 트리거 강도에 곱하는 계수
	TTL           time.Duration // 규칙/트리거 캐시 TTL
}

// DefaultConfig 기본 설정
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		MinLift:       1.2,
		MinConfidence: 0.3,
		MaxBoost:      1.15,
		LookbackDays:  3,
		BoostScale:    0.5,
		TTL:           300 * time.Second,
	}
}

// Result 부스트 결과
type Result struct {
	Boost      float64                    `json:"boost"`
	Level      contracts.AssociationLevel `json:"level,omitempty"`
	TriggerKey string                     `json:"trigger_key,omitempty"`
	Lift       float64                    `json:"lift,omitempty"`
	Ratio      float64                    `json:"ratio,omitempty"` // 트리거 최근/기준 비율
	Label      string                     `json:"label"`
}

// Neutral 부스트 없음
func Neutral(label string) Result {
	return Result{Boost: 1.0, Label: label}
}

// Booster 연관 상품/카테고리 급증 시 발주량 부스트
// 캐시 2개 (규칙, 트리거 비율)는 각각 TTL 로 갱신
type Booster struct {
	reader   contracts.AssociationReader
	config   Config
	rules    *TTLCache[string, []contracts.AssociationRule]
	triggers *TTLCache[string, *float64]
	log      zerolog.Logger
}

// NewBooster 새 부스터 생성
func NewBooster(reader contracts.AssociationReader, log zerolog.Logger) *Booster {
	return NewBoosterWithConfig(DefaultConfig(), reader, nil, log)
}

// NewBoosterWithConfig 커스텀 설정/시계로 부스터 생성
func NewBoosterWithConfig(config Config, reader contracts.AssociationReader, clock Clock, log zerolog.Logger) *Booster {
	return &Booster{
		reader:   reader,
		config:   config,
		rules:    NewTTLCache[string, []contracts.AssociationRule](config.TTL, clock),
		triggers: NewTTLCache[string, *float64](config.TTL, clock),
		log:      log.With().Str("component", "association.booster").Logger(),
	}
}

// EnsureFresh TTL 이 지난 캐시를 다시 채움
// 규칙은 스냅샷 전체를 다시 읽고, 트리거는 비운 뒤 필요할 때 키별로 채움
// 조회 실패 시 빈 캐시 → 중립 부스트
func (b *Booster) EnsureFresh(ctx context.Context) {
	if b.rules.Stale() {
		b.rules.Replace(b.loadRules(ctx))
	}
	if b.triggers.Stale() {
		b.triggers.Replace(nil)
	}
}

func (b *Booster) loadRules(ctx context.Context) map[string][]contracts.AssociationRule {
	index := make(map[string][]contracts.AssociationRule)
	if b.reader == nil {
		return index
	}

	rules, err := b.reader.GetAssociationRules(ctx, b.config.MinLift)
	if err != nil {
		b.log.Warn().Err(err).Msg("association rules unavailable, boost disabled until next refresh")
		return index
	}

	for _, r := range rules {
		if r.Lift < b.config.MinLift {
			continue
		}
		key := contracts.TriggerCacheKey(r.Level, r.BoostedKey)
		index[key] = append(index[key], r)
	}
	for key := range index {
		rs := index[key]
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].TriggerKey < rs[j].TriggerKey })
	}

	b.log.Debug().Int("rules", len(rules)).Int("boosted_keys", len(index)).Msg("association rules refreshed")
	return index
}

// Boost 카테고리 규칙 우선, 적용할 부스트가 없을 때만 상품 규칙
func (b *Booster) Boost(ctx context.Context, itemID, categoryID string) Result {
	if !b.config.Enabled {
		return Neutral("disabled")
	}

	b.EnsureFresh(ctx)

	if r, ok := b.best(ctx, contracts.AssociationCategory, categoryID); ok {
		return r
	}
	if r, ok := b.best(ctx, contracts.AssociationItem, itemID); ok {
		return r
	}
	return Neutral("none")
}

// best 후보 규칙 중 최대 부스트 (상한 적용)
func (b *Booster) best(ctx context.Context, level contracts.AssociationLevel, key string) (Result, bool) {
	if key == "" {
		return Result{}, false
	}

	rules, _ := b.rules.Get(contracts.TriggerCacheKey(level, key))

	var best Result
	found := false
	for _, rule := range rules {
		if rule.Confidence < b.config.MinConfidence || rule.Lift < b.config.MinLift {
			continue
		}

		ratio := b.trigger(ctx, rule.Level, rule.TriggerKey)
		if ratio == nil || *ratio <= 1.0 {
			continue
		}

		candidate := 1 + (rule.Lift-1)*math.Min(*ratio-1, 1)*b.config.BoostScale
		if candidate <= 1.0 {
			continue
		}
		if !found || candidate > best.Boost {
			best = Result{
				Boost:      candidate,
				Level:      rule.Level,
				TriggerKey: rule.TriggerKey,
				Lift:       rule.Lift,
				Ratio:      *ratio,
				Label:      "assoc_" + string(rule.Level),
			}
			found = true
		}
	}

	if !found {
		return Result{}, false
	}
	best.Boost = math.Min(best.Boost, b.config.MaxBoost)
	return best, true
}

// trigger 트리거 비율 (캐시 미스 시 저장소 조회, 실패/없음은 nil 로 캐시)
func (b *Booster) trigger(ctx context.Context, level contracts.AssociationLevel, key string) *float64 {
	cacheKey := contracts.TriggerCacheKey(level, key)
	if v, ok := b.triggers.Get(cacheKey); ok {
		return v
	}

	ratio, err := b.reader.GetRecentVsBaselineRatio(ctx, level, key, b.config.LookbackDays)
	if err != nil {
		b.log.Warn().Err(err).Str("trigger", cacheKey).Msg("trigger ratio unavailable")
		ratio = nil
	}
	b.triggers.Set(cacheKey, ratio)
	return ratio
}
