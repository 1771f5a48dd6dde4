package feedback

// PostgresSchema 예측 로그/검증 결과 테이블 (retail 스키마 선행 필요)
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS retail.prediction_logs (
	store_id            VARCHAR(16) NOT NULL,
	item_id             VARCHAR(32) NOT NULL,
	category_id         VARCHAR(16) NOT NULL DEFAULT '',
	target_date         DATE NOT NULL,
	strategy            VARCHAR(32) NOT NULL DEFAULT '',
	blended_prediction  DOUBLE PRECISION NOT NULL DEFAULT 0,
	adjusted_prediction DOUBLE PRECISION NOT NULL DEFAULT 0,
	safety_stock        DOUBLE PRECISION NOT NULL DEFAULT 0,
	order_qty           INT NOT NULL DEFAULT 0,
	order_unit          INT NOT NULL DEFAULT 1,
	quality             VARCHAR(16) NOT NULL DEFAULT '',
	confidence          VARCHAR(16) NOT NULL DEFAULT '',
	model_path          TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (store_id, item_id, target_date)
);

CREATE TABLE IF NOT EXISTS retail.prediction_outcomes (
	store_id      VARCHAR(16) NOT NULL,
	item_id       VARCHAR(32) NOT NULL,
	category_id   VARCHAR(16) NOT NULL DEFAULT '',
	target_date   DATE NOT NULL,
	predicted     DOUBLE PRECISION NOT NULL,
	actual        DOUBLE PRECISION NOT NULL,
	error         DOUBLE PRECISION NOT NULL,
	abs_error     DOUBLE PRECISION NOT NULL,
	ape           DOUBLE PRECISION,
	hit           BOOLEAN NOT NULL,
	reconciled_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (store_id, item_id, target_date)
);
CREATE INDEX IF NOT EXISTS idx_prediction_outcomes_date
	ON retail.prediction_outcomes (target_date);
`
