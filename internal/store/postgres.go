package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wonny/ordercast/internal/contracts"
)

// PostgresStore 점포 1곳의 시계열 저장소 (retail 스키마, store_id 파티션)
// 읽기 전용. 테이블은 외부 수집기가 관리
type PostgresStore struct {
	pool    *pgxpool.Pool
	storeID string
	log     zerolog.Logger
}

// NewPostgresStore 새 저장소 생성
func NewPostgresStore(pool *pgxpool.Pool, storeID string, log zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		pool:    pool,
		storeID: storeID,
		log:     log.With().Str("component", "store.postgres").Str("store_id", storeID).Logger(),
	}
}

// ForStore 같은 풀을 쓰는 다른 점포 저장소
func (s *PostgresStore) ForStore(storeID string) *PostgresStore {
	return NewPostgresStore(s.pool, storeID, s.log)
}

// StoreID 점포 코드
func (s *PostgresStore) StoreID() string {
	return s.storeID
}

// GetObservations start~end 관측치 (날짜 오름차순)
func (s *PostgresStore) GetObservations(ctx context.Context, itemID string, start, end time.Time) ([]contracts.Observation, error) {
	query := `
		SELECT item_id, sales_date, sold, received, stock, disposed,
			   category_id, COALESCE(promotion_kind, '')
		FROM retail.daily_sales
		WHERE store_id = $1 AND item_id = $2 AND sales_date BETWEEN $3 AND $4
		ORDER BY sales_date`

	rows, err := s.pool.Query(ctx, query, s.storeID, itemID, contracts.Day(start), contracts.Day(end))
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []contracts.Observation
	for rows.Next() {
		var o contracts.Observation
		var kind string
		if err := rows.Scan(
			&o.ItemID, &o.Date, &o.Sold, &o.Received, &o.Stock, &o.Disposed,
			&o.CategoryID, &kind,
		); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Date = contracts.Day(o.Date)
		o.PromotionKind = contracts.PromotionKind(kind)
		out = append(out, o)
	}

	return out, rows.Err()
}

// GetPromotionWindows 기준일의 현재 행사와 다음 행사
func (s *PostgresStore) GetPromotionWindows(ctx context.Context, itemID string, today time.Time) (contracts.PromotionWindows, error) {
	query := `
		SELECT item_id, promotion_kind, start_date, end_date, is_active
		FROM retail.promotions
		WHERE store_id = $1 AND item_id = $2 AND is_active AND end_date >= $3
		ORDER BY start_date`

	rows, err := s.pool.Query(ctx, query, s.storeID, itemID, contracts.Day(today))
	if err != nil {
		return contracts.PromotionWindows{}, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var windows []contracts.PromotionWindow
	for rows.Next() {
		var w contracts.PromotionWindow
		var kind string
		if err := rows.Scan(&w.ItemID, &kind, &w.Start, &w.End, &w.Active); err != nil {
			return contracts.PromotionWindows{}, fmt.Errorf("scan promotion: %w", err)
		}
		w.Kind = contracts.PromotionKind(kind)
		w.Start, w.End = contracts.Day(w.Start), contracts.Day(w.End)
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return contracts.PromotionWindows{}, err
	}

	return nearestWindows(windows, today), nil
}

// GetAssociationRules lift 이상 규칙
func (s *PostgresStore) GetAssociationRules(ctx context.Context, minLift float64) ([]contracts.AssociationRule, error) {
	query := `
		SELECT level, trigger_key, boosted_key, support, confidence, lift, correlation, sample_size
		FROM retail.association_rules
		WHERE store_id = $1 AND lift >= $2
		ORDER BY level, boosted_key, trigger_key`

	rows, err := s.pool.Query(ctx, query, s.storeID, minLift)
	if err != nil {
		return nil, fmt.Errorf("query association rules: %w", err)
	}
	defer rows.Close()

	var out []contracts.AssociationRule
	for rows.Next() {
		var r contracts.AssociationRule
		var level string
		if err := rows.Scan(
			&level, &r.TriggerKey, &r.BoostedKey, &r.Support,
			&r.Confidence, &r.Lift, &r.Correlation, &r.SampleSize,
		); err != nil {
			return nil, fmt.Errorf("scan association rule: %w", err)
		}
		r.Level = contracts.AssociationLevel(level)
		out = append(out, r)
	}

	return out, rows.Err()
}

// GetRecentVsBaselineRatio 최근 lookback 일 평균 / 60일 기준 평균
func (s *PostgresStore) GetRecentVsBaselineRatio(ctx context.Context, level contracts.AssociationLevel, key string, lookbackDays int) (*float64, error) {
	totals, err := s.dailyTotals(ctx, keyColumn(level), key, BaselineDays)
	if err != nil {
		return nil, err
	}
	return recentVsBaseline(totals, lookbackDays), nil
}

// keyColumn 연관 단위별 조회 컬럼 (고정 값만 반환)
func keyColumn(level contracts.AssociationLevel) string {
	if level == contracts.AssociationItem {
		return "item_id"
	}
	return "category_id"
}

// dailyTotals 해당 키의 마지막 판매일 기준 days 일 동안의 일별 합계
func (s *PostgresStore) dailyTotals(ctx context.Context, column, key string, days int) (dailyTotals, error) {
	query := fmt.Sprintf(`
		WITH scope AS (
			SELECT sales_date, sold
			FROM retail.daily_sales
			WHERE store_id = $1 AND %s = $2
		)
		SELECT sales_date, SUM(sold)
		FROM scope
		WHERE sales_date > (SELECT MAX(sales_date) FROM scope) - $3::int
		GROUP BY sales_date`, column)

	rows, err := s.pool.Query(ctx, query, s.storeID, key, days)
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()

	totals := make(dailyTotals)
	for rows.Next() {
		var d time.Time
		var sold float64
		if err := rows.Scan(&d, &sold); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		totals.add(d, sold)
	}

	return totals, rows.Err()
}

// GetItem 상품 마스터 (없으면 ErrItemNotFound)
func (s *PostgresStore) GetItem(ctx context.Context, itemID string) (*contracts.ItemInfo, error) {
	query := `
		SELECT item_id, item_name, category_id, shelf_life_days, order_unit
		FROM retail.store_items
		WHERE store_id = $1 AND item_id = $2`

	var item contracts.ItemInfo
	err := s.pool.QueryRow(ctx, query, s.storeID, itemID).Scan(
		&item.ItemID, &item.Name, &item.CategoryID, &item.ShelfLifeDays, &item.OrderUnit,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.NewItemNotFound(itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}

	return &item, nil
}

// ListItems 점포 취급 상품 (item_id 순)
func (s *PostgresStore) ListItems(ctx context.Context) ([]contracts.ItemInfo, error) {
	query := `
		SELECT item_id, item_name, category_id, shelf_life_days, order_unit
		FROM retail.store_items
		WHERE store_id = $1
		ORDER BY item_id`

	rows, err := s.pool.Query(ctx, query, s.storeID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []contracts.ItemInfo
	for rows.Next() {
		var item contracts.ItemInfo
		if err := rows.Scan(&item.ItemID, &item.Name, &item.CategoryID, &item.ShelfLifeDays, &item.OrderUnit); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, item)
	}

	return out, rows.Err()
}

// GetWeekdayCoefficients 최근 8주 카테고리 판매로 학습한 요일 계수
func (s *PostgresStore) GetWeekdayCoefficients(ctx context.Context, categoryID string) ([7]float64, bool, error) {
	totals, err := s.dailyTotals(ctx, "category_id", categoryID, WeekdayLearnDays)
	if err != nil {
		return [7]float64{}, false, err
	}
	coefs, ok := learnWeekdayCoefficients(totals)
	return coefs, ok, nil
}

// GetInventory 재고 현황 테이블 → asOf 이전 최신 마감 재고
func (s *PostgresStore) GetInventory(ctx context.Context, itemID string, asOf time.Time) (contracts.Inventory, error) {
	inv := contracts.Inventory{ItemID: itemID}

	err := s.pool.QueryRow(ctx, `
		SELECT stock, pending_qty
		FROM retail.inventory
		WHERE store_id = $1 AND item_id = $2`,
		s.storeID, itemID,
	).Scan(&inv.Stock, &inv.PendingQty)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return inv, fmt.Errorf("query inventory: %w", err)
	}

	s.log.Debug().Str("item_id", itemID).Msg("no inventory snapshot, using latest closing stock")
	err = s.pool.QueryRow(ctx, `
		SELECT stock
		FROM retail.daily_sales
		WHERE store_id = $1 AND item_id = $2 AND sales_date < $3
		ORDER BY sales_date DESC
		LIMIT 1`,
		s.storeID, itemID, contracts.Day(asOf),
	).Scan(&inv.Stock)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return inv, fmt.Errorf("query latest stock: %w", err)
	}

	return inv, nil
}

var _ contracts.Store = (*PostgresStore)(nil)
