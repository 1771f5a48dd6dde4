package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: 외부 저장소(Time-Series Store Accessor) 읽기 인터페이스는 여기서만 정의
// 엔진은 스키마를 관리하지 않고 아래 계약만 소비함

// SeriesReader 일별 관측치 조회
type SeriesReader interface {
	// GetObservations start~end (포함) 구간의 관측치를 날짜 오름차순으로 반환
	GetObservations(ctx context.Context, itemID string, start, end time.Time) ([]Observation, error)
}

// PromotionReader 행사 기간 조회
type PromotionReader interface {
	// GetPromotionWindows 기준일의 현재 행사와 다음 행사 (없으면 nil)
	GetPromotionWindows(ctx context.Context, itemID string, today time.Time) (PromotionWindows, error)
}

// AssociationReader 연관 규칙/트리거 비율 조회
type AssociationReader interface {
	GetAssociationRules(ctx context.Context, minLift float64) ([]AssociationRule, error)
	// GetRecentVsBaselineRatio 최근 lookbackDays 평균 / 60일 기준 평균 (기준 평균 0이면 nil)
	GetRecentVsBaselineRatio(ctx context.Context, level AssociationLevel, key string, lookbackDays int) (*float64, error)
}

// ItemReader 상품 마스터 조회
type ItemReader interface {
	// GetItem 상품이 없으면 ErrItemNotFound
	GetItem(ctx context.Context, itemID string) (*ItemInfo, error)
	ListItems(ctx context.Context) ([]ItemInfo, error)
}

// WeekdayCoefficientReader 저장소 데이터로 학습된 카테고리 요일 계수
type WeekdayCoefficientReader interface {
	// GetWeekdayCoefficients time.Weekday(0=일) 인덱스, 학습값이 없으면 ok=false
	GetWeekdayCoefficients(ctx context.Context, categoryID string) (coefs [7]float64, ok bool, err error)
}

// InventoryReader 발주 시점 재고/미입고 수량 조회
type InventoryReader interface {
	// GetInventory asOf 기준 최신 재고와 미입고 수량 (기록이 없으면 0)
	GetInventory(ctx context.Context, itemID string, asOf time.Time) (Inventory, error)
}

// Store 점포 단위 저장소 (모든 읽기 계약)
type Store interface {
	SeriesReader
	PromotionReader
	AssociationReader
	ItemReader
	WeekdayCoefficientReader
	InventoryReader
}

// FeedbackSink 정확도 추적기로 예측 결과 전달 (fire-and-forget)
type FeedbackSink interface {
	Emit(ctx context.Context, result PredictionResult)
}
