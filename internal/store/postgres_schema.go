package store

// PostgresSchema retail 스키마 (점포 코드로 파티션된 공용 테이블)
// database.DB.EnsureSchema 로 적용
const PostgresSchema = `
CREATE SCHEMA IF NOT EXISTS retail;

CREATE TABLE IF NOT EXISTS retail.daily_sales (
	store_id       VARCHAR(16) NOT NULL,
	item_id        VARCHAR(32) NOT NULL,
	sales_date     DATE NOT NULL,
	sold           DOUBLE PRECISION NOT NULL DEFAULT 0,
	received       DOUBLE PRECISION NOT NULL DEFAULT 0,
	stock          DOUBLE PRECISION NOT NULL DEFAULT 0,
	disposed       DOUBLE PRECISION NOT NULL DEFAULT 0,
	category_id    VARCHAR(16) NOT NULL DEFAULT '',
	promotion_kind VARCHAR(8),
	PRIMARY KEY (store_id, item_id, sales_date)
);
CREATE INDEX IF NOT EXISTS idx_daily_sales_category
	ON retail.daily_sales (store_id, category_id, sales_date);

CREATE TABLE IF NOT EXISTS retail.store_items (
	store_id        VARCHAR(16) NOT NULL,
	item_id         VARCHAR(32) NOT NULL,
	item_name       TEXT NOT NULL DEFAULT '',
	category_id     VARCHAR(16) NOT NULL DEFAULT '',
	shelf_life_days INT NOT NULL DEFAULT 0,
	order_unit      INT NOT NULL DEFAULT 1,
	PRIMARY KEY (store_id, item_id)
);

CREATE TABLE IF NOT EXISTS retail.promotions (
	store_id       VARCHAR(16) NOT NULL,
	item_id        VARCHAR(32) NOT NULL,
	promotion_kind VARCHAR(8) NOT NULL,
	start_date     DATE NOT NULL,
	end_date       DATE NOT NULL,
	is_active      BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_promotions_item
	ON retail.promotions (store_id, item_id, end_date);

CREATE TABLE IF NOT EXISTS retail.association_rules (
	store_id    VARCHAR(16) NOT NULL,
	level       VARCHAR(16) NOT NULL,
	trigger_key VARCHAR(32) NOT NULL,
	boosted_key VARCHAR(32) NOT NULL,
	support     DOUBLE PRECISION NOT NULL DEFAULT 0,
	confidence  DOUBLE PRECISION NOT NULL DEFAULT 0,
	lift        DOUBLE PRECISION NOT NULL DEFAULT 0,
	correlation DOUBLE PRECISION NOT NULL DEFAULT 0,
	sample_size INT NOT NULL DEFAULT 0,
	PRIMARY KEY (store_id, level, trigger_key, boosted_key)
);

CREATE TABLE IF NOT EXISTS retail.inventory (
	store_id    VARCHAR(16) NOT NULL,
	item_id     VARCHAR(32) NOT NULL,
	stock       DOUBLE PRECISION NOT NULL DEFAULT 0,
	pending_qty DOUBLE PRECISION NOT NULL DEFAULT 0,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (store_id, item_id)
);
`
