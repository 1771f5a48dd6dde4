package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/ordercast/internal/contracts"
)

// SQLiteSchema 점포별 SQLite 파일의 테이블 (fixture/데모 용)
// 운영 파일은 외부 수집기가 같은 구조로 생성
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS daily_sales (
	item_id        TEXT NOT NULL,
	sales_date     TEXT NOT NULL,
	sold           REAL NOT NULL DEFAULT 0,
	received       REAL NOT NULL DEFAULT 0,
	stock          REAL NOT NULL DEFAULT 0,
	disposed       REAL NOT NULL DEFAULT 0,
	category_id    TEXT NOT NULL DEFAULT '',
	promotion_kind TEXT,
	PRIMARY KEY (item_id, sales_date)
);
CREATE INDEX IF NOT EXISTS idx_daily_sales_category ON daily_sales (category_id, sales_date);

CREATE TABLE IF NOT EXISTS store_items (
	item_id         TEXT PRIMARY KEY,
	item_name       TEXT NOT NULL DEFAULT '',
	category_id     TEXT NOT NULL DEFAULT '',
	shelf_life_days INTEGER NOT NULL DEFAULT 0,
	order_unit      INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS promotions (
	item_id        TEXT NOT NULL,
	promotion_kind TEXT NOT NULL,
	start_date     TEXT NOT NULL,
	end_date       TEXT NOT NULL,
	is_active      INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS association_rules (
	level       TEXT NOT NULL,
	trigger_key TEXT NOT NULL,
	boosted_key TEXT NOT NULL,
	support     REAL NOT NULL DEFAULT 0,
	confidence  REAL NOT NULL DEFAULT 0,
	lift        REAL NOT NULL DEFAULT 0,
	correlation REAL NOT NULL DEFAULT 0,
	sample_size INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS inventory (
	item_id     TEXT PRIMARY KEY,
	stock       REAL NOT NULL DEFAULT 0,
	pending_qty REAL NOT NULL DEFAULT 0
);
`

// SQLiteStore 점포 1곳 = SQLite 파일 1개
type SQLiteStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteStore 새 저장소 생성 (db 는 database.OpenSQLite 로 연 것)
func NewSQLiteStore(db *sql.DB, log zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:  db,
		log: log.With().Str("component", "store.sqlite").Logger(),
	}
}

// Close 파일 닫기
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(contracts.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", v, err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return contracts.Day(t).Format(contracts.DateLayout)
}

// GetObservations start~end 관측치 (날짜 오름차순)
func (s *SQLiteStore) GetObservations(ctx context.Context, itemID string, start, end time.Time) ([]contracts.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, sales_date, sold, received, stock, disposed,
			   category_id, COALESCE(promotion_kind, '')
		FROM daily_sales
		WHERE item_id = ? AND sales_date BETWEEN ? AND ?
		ORDER BY sales_date`,
		itemID, formatDate(start), formatDate(end),
	)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []contracts.Observation
	for rows.Next() {
		var o contracts.Observation
		var date, kind string
		if err := rows.Scan(
			&o.ItemID, &date, &o.Sold, &o.Received, &o.Stock, &o.Disposed,
			&o.CategoryID, &kind,
		); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		if o.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		o.PromotionKind = contracts.PromotionKind(kind)
		out = append(out, o)
	}

	return out, rows.Err()
}

// GetPromotionWindows 기준일의 현재 행사와 다음 행사
func (s *SQLiteStore) GetPromotionWindows(ctx context.Context, itemID string, today time.Time) (contracts.PromotionWindows, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, promotion_kind, start_date, end_date, is_active
		FROM promotions
		WHERE item_id = ? AND is_active = 1 AND end_date >= ?
		ORDER BY start_date`,
		itemID, formatDate(today),
	)
	if err != nil {
		return contracts.PromotionWindows{}, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var windows []contracts.PromotionWindow
	for rows.Next() {
		var w contracts.PromotionWindow
		var kind, start, end string
		if err := rows.Scan(&w.ItemID, &kind, &start, &end, &w.Active); err != nil {
			return contracts.PromotionWindows{}, fmt.Errorf("scan promotion: %w", err)
		}
		if w.Start, err = parseDate(start); err != nil {
			return contracts.PromotionWindows{}, err
		}
		if w.End, err = parseDate(end); err != nil {
			return contracts.PromotionWindows{}, err
		}
		w.Kind = contracts.PromotionKind(kind)
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return contracts.PromotionWindows{}, err
	}

	return nearestWindows(windows, today), nil
}

// GetAssociationRules lift 이상 규칙
func (s *SQLiteStore) GetAssociationRules(ctx context.Context, minLift float64) ([]contracts.AssociationRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT level, trigger_key, boosted_key, support, confidence, lift, correlation, sample_size
		FROM association_rules
		WHERE lift >= ?
		ORDER BY level, boosted_key, trigger_key`,
		minLift,
	)
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
func (s *SQLiteStore) GetRecentVsBaselineRatio(ctx context.Context, level contracts.AssociationLevel, key string, lookbackDays int) (*float64, error) {
	totals, err := s.dailyTotals(ctx, keyColumn(level), key, BaselineDays)
	if err != nil {
		return nil, err
	}
	return recentVsBaseline(totals, lookbackDays), nil
}

// dailyTotals 해당 키의 마지막 판매일 기준 days 일 동안의 일별 합계
func (s *SQLiteStore) dailyTotals(ctx context.Context, column, key string, days int) (dailyTotals, error) {
	query := fmt.Sprintf(`
		WITH scope AS (
			SELECT sales_date, sold FROM daily_sales WHERE %s = ?
		)
		SELECT sales_date, SUM(sold)
		FROM scope
		WHERE sales_date > date((SELECT MAX(sales_date) FROM scope), ?)
		GROUP BY sales_date`, column)

	rows, err := s.db.QueryContext(ctx, query, key, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()

	totals := make(dailyTotals)
	for rows.Next() {
		var date string
		var sold float64
		if err := rows.Scan(&date, &sold); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		totals.add(d, sold)
	}

	return totals, rows.Err()
}

// GetItem 상품 마스터 (없으면 ErrItemNotFound)
func (s *SQLiteStore) GetItem(ctx context.Context, itemID string) (*contracts.ItemInfo, error) {
	var item contracts.ItemInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT item_id, item_name, category_id, shelf_life_days, order_unit
		FROM store_items
		WHERE item_id = ?`,
		itemID,
	).Scan(&item.ItemID, &item.Name, &item.CategoryID, &item.ShelfLifeDays, &item.OrderUnit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contracts.NewItemNotFound(itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}

	return &item, nil
}

// ListItems 취급 상품 (item_id 순)
func (s *SQLiteStore) ListItems(ctx context.Context) ([]contracts.ItemInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, item_name, category_id, shelf_life_days, order_unit
		FROM store_items
		ORDER BY item_id`)
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
func (s *SQLiteStore) GetWeekdayCoefficients(ctx context.Context, categoryID string) ([7]float64, bool, error) {
	totals, err := s.dailyTotals(ctx, "category_id", categoryID, WeekdayLearnDays)
	if err != nil {
		return [7]float64{}, false, err
	}
	coefs, ok := learnWeekdayCoefficients(totals)
	return coefs, ok, nil
}

// GetInventory 재고 현황 테이블 → asOf 이전 최신 마감 재고
func (s *SQLiteStore) GetInventory(ctx context.Context, itemID string, asOf time.Time) (contracts.Inventory, error) {
	inv := contracts.Inventory{ItemID: itemID}

	err := s.db.QueryRowContext(ctx,
		`SELECT stock, pending_qty FROM inventory WHERE item_id = ?`, itemID,
	).Scan(&inv.Stock, &inv.PendingQty)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return inv, fmt.Errorf("query inventory: %w", err)
	}

	s.log.Debug().Str("item_id", itemID).Msg("no inventory snapshot, using latest closing stock")
	err = s.db.QueryRowContext(ctx, `
		SELECT stock FROM daily_sales
		WHERE item_id = ? AND sales_date < ?
		ORDER BY sales_date DESC
		LIMIT 1`,
		itemID, formatDate(asOf),
	).Scan(&inv.Stock)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return inv, fmt.Errorf("query latest stock: %w", err)
	}

	return inv, nil
}

var _ contracts.Store = (*SQLiteStore)(nil)
