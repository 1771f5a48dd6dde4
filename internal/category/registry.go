package category

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Registry 카테고리 전략 디스패처
// ⭐ SSOT: 카테고리 ID → 전략 선택은 여기서만
// 등록 순서대로 Matches 를 평가하고 첫 매칭을 카테고리 ID 별로 메모이즈한다.
// default 전략이 마지막에 등록되어 모든 ID 에 결과가 존재한다.
type Registry struct {
	strategies []Strategy
	fallback   Strategy
	log        zerolog.Logger

	mu   sync.RWMutex
	memo map[string]Strategy
}

// NewRegistry 프로파일 목록으로 레지스트리 생성 (검증 실패 시 에러)
func NewRegistry(profiles []Profile, log zerolog.Logger) (*Registry, error) {
	prepared, err := Prepare(profiles)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		strategies: make([]Strategy, 0, len(prepared)),
		log:        log.With().Str("component", "category.registry").Logger(),
		memo:       make(map[string]Strategy),
	}
	for _, p := range prepared {
		s := newStrategy(p)
		r.strategies = append(r.strategies, s)
		if p.Kind == KindDefault {
			r.fallback = s
		}
	}
	if r.fallback == nil {
		return nil, fmt.Errorf("category registry: no default strategy")
	}

	r.log.Debug().Int("strategies", len(r.strategies)).Msg("category registry built")
	return r, nil
}

// NewDefaultRegistry 기본 프로파일 레지스트리
func NewDefaultRegistry(log zerolog.Logger) *Registry {
	r, err := NewRegistry(DefaultProfiles(), log)
	if err != nil {
		// 기본 프로파일은 테스트로 보장됨
		panic(fmt.Sprintf("default category profiles invalid: %v", err))
	}
	return r
}

// Lookup 카테고리 ID 에 해당하는 전략 (항상 결과 존재)
func (r *Registry) Lookup(categoryID string) Strategy {
	r.mu.RLock()
	s, ok := r.memo[categoryID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	s = r.match(categoryID)

	r.mu.Lock()
	if existing, ok := r.memo[categoryID]; ok {
		s = existing
	} else {
		r.memo[categoryID] = s
	}
	r.mu.Unlock()

	return s
}

func (r *Registry) match(categoryID string) Strategy {
	for _, s := range r.strategies {
		if s.Kind() == KindDefault {
			continue
		}
		if s.Matches(categoryID) {
			return s
		}
	}

	r.log.Debug().Str("category_id", categoryID).Msg("unmapped category, using default strategy")
	return r.fallback
}

// Strategies 등록 순서대로 전략 목록
func (r *Registry) Strategies() []Strategy {
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}

// Default 기본 전략
func (r *Registry) Default() Strategy {
	return r.fallback
}
