package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/ordercast/internal/contracts"
)

// RuleCache 규칙 스냅샷 캐시 (pkg/redis.Cache 가 구현)
type RuleCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedRules 연관 규칙 조회만 공유 캐시를 거치는 Store 데코레이터
// 규칙은 외부 배치가 하루 단위로 채굴하므로 점포 프로세스끼리 스냅샷을 공유
type CachedRules struct {
	contracts.Store
	cache   RuleCache
	storeID string
	ttl     time.Duration
	log     zerolog.Logger
}

// NewCachedRules 새 데코레이터 생성
func NewCachedRules(inner contracts.Store, cache RuleCache, storeID string, ttl time.Duration, log zerolog.Logger) *CachedRules {
	return &CachedRules{
		Store:   inner,
		cache:   cache,
		storeID: storeID,
		ttl:     ttl,
		log:     log.With().Str("component", "store.cached_rules").Str("store_id", storeID).Logger(),
	}
}

// RulesKey 캐시 키
func RulesKey(storeID string, minLift float64) string {
	return fmt.Sprintf("assoc:rules:%s:%.2f", storeID, minLift)
}

// GetAssociationRules 캐시 → 저장소 (캐시 오류는 무시하고 저장소 결과 사용)
func (c *CachedRules) GetAssociationRules(ctx context.Context, minLift float64) ([]contracts.AssociationRule, error) {
	key := RulesKey(c.storeID, minLift)

	var cached []contracts.AssociationRule
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("rule cache read failed")
	}
	if found {
		return cached, nil
	}

	rules, err := c.Store.GetAssociationRules(ctx, minLift)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, rules, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("rule cache write failed")
	}
	return rules, nil
}
