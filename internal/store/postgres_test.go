package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ordercast/internal/contracts"
)

// 통합 테스트: DATABASE_URL 이 있을 때만 실행
func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, PostgresSchema)
	require.NoError(t, err)

	storeID := fmt.Sprintf("it%d", time.Now().UnixNano()%1_000_000_000_000)
	t.Cleanup(func() {
		for _, table := range []string{"daily_sales", "store_items", "promotions", "association_rules", "inventory"} {
			_, _ = pool.Exec(context.Background(), "DELETE FROM retail."+table+" WHERE store_id = $1", storeID)
		}
	})

	target := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err = pool.Exec(ctx,
		`INSERT INTO retail.store_items (store_id, item_id, item_name, category_id, shelf_life_days, order_unit)
		 VALUES ($1, '9001', 'water', '040', 240, 6)`, storeID)
	require.NoError(t, err)
	for i := 1; i <= 14; i++ {
		_, err = pool.Exec(ctx,
			`INSERT INTO retail.daily_sales (store_id, item_id, sales_date, sold, stock, category_id)
			 VALUES ($1, '9001', $2, 5, $3, '040')`,
			storeID, target.AddDate(0, 0, -i), float64(10+i))
		require.NoError(t, err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO retail.promotions (store_id, item_id, promotion_kind, start_date, end_date)
		 VALUES ($1, '9001', '1+1', $2, $3)`,
		storeID, target.AddDate(0, 0, -3), target.AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = pool.Exec(ctx,
		`INSERT INTO retail.association_rules (store_id, level, trigger_key, boosted_key, confidence, lift)
		 VALUES ($1, 'category', '049', '040', 0.4, 1.5), ($1, 'category', '015', '040', 0.4, 1.1)`, storeID)
	require.NoError(t, err)

	st := NewPostgresStore(pool, storeID, zerolog.Nop())

	item, err := st.GetItem(ctx, "9001")
	require.NoError(t, err)
	assert.Equal(t, 6, item.OrderUnit)

	_, err = st.GetItem(ctx, "nope")
	assert.ErrorIs(t, err, contracts.ErrItemNotFound)

	obs, err := st.GetObservations(ctx, "9001", target.AddDate(0, 0, -7), target.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, obs, 7)
	assert.True(t, obs[0].Date.Before(obs[6].Date))

	windows, err := st.GetPromotionWindows(ctx, "9001", target)
	require.NoError(t, err)
	require.NotNil(t, windows.Current)
	assert.Equal(t, contracts.PromotionBuyOneGetOne, windows.Current.Kind)

	rules, err := st.GetAssociationRules(ctx, 1.2)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "049", rules[0].TriggerKey)

	// 재고 현황 없음 → 전일 마감 재고
	inv, err := st.GetInventory(ctx, "9001", target)
	require.NoError(t, err)
	assert.Equal(t, 11.0, inv.Stock)

	_, err = pool.Exec(ctx,
		`INSERT INTO retail.inventory (store_id, item_id, stock, pending_qty) VALUES ($1, '9001', 4, 6)`, storeID)
	require.NoError(t, err)
	inv, err = st.GetInventory(ctx, "9001", target)
	require.NoError(t, err)
	assert.Equal(t, contracts.Inventory{ItemID: "9001", Stock: 4, PendingQty: 6}, inv)
}
