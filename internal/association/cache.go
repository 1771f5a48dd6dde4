package association

import (
	"sync"
	"time"
)

// Clock 현재 시각 공급자 (테스트에서 고정 시각 주입)
type Clock func() time.Time

// TTLCache 마지막 갱신 시각 기반 프로세스 로컬 캐시
// ⭐ SSOT: 연관 규칙/트리거 캐싱은 이 구조체에서만
// 갱신은 전체 교체라 여러 번 호출돼도 결과가 같다
type TTLCache[K comparable, V any] struct {
	mu          sync.RWMutex
	entries     map[K]V
	ttl         time.Duration
	clock       Clock
	refreshedAt time.Time
}

// NewTTLCache 새 캐시 생성 (clock 이 nil 이면 time.Now)
func NewTTLCache[K comparable, V any](ttl time.Duration, clock Clock) *TTLCache[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &TTLCache[K, V]{
		entries: make(map[K]V),
		ttl:     ttl,
		clock:   clock,
	}
}

// Stale 한 번도 채워지지 않았거나 TTL 이 지났는지
func (c *TTLCache[K, V]) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.refreshedAt.IsZero() {
		return true
	}
	return c.clock().Sub(c.refreshedAt) >= c.ttl
}

// Replace 내용 전체 교체 후 갱신 시각 기록
func (c *TTLCache[K, V]) Replace(entries map[K]V) {
	if entries == nil {
		entries = make(map[K]V)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = entries
	c.refreshedAt = c.clock()
}

// Get 캐시 조회
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]
	return v, ok
}

// Set 단건 저장 (갱신 시각은 바꾸지 않음)
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = value
}

// Len 항목 수
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// RefreshedAt 마지막 갱신 시각
func (c *TTLCache[K, V]) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.refreshedAt
}

// Invalidate 다음 EnsureFresh 에서 다시 채우도록 표시
func (c *TTLCache[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshedAt = time.Time{}
}
