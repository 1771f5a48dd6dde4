package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wonny/ordercast/internal/contracts"
)

// Repository 예측 로그/검증 결과 저장소 (retail.prediction_logs, retail.prediction_outcomes)
type Repository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool, log zerolog.Logger) *Repository {
	return &Repository{
		pool: pool,
		log:  log.With().Str("component", "feedback.repository").Logger(),
	}
}

// SavePrediction 예측 로그 저장 (점포/상품/일자당 1건, 재실행 시 덮어씀)
func (r *Repository) SavePrediction(ctx context.Context, res contracts.PredictionResult) error {
	query := `
		INSERT INTO retail.prediction_logs
			(store_id, item_id, category_id, target_date, strategy,
			 blended_prediction, adjusted_prediction, safety_stock, order_qty, order_unit,
			 quality, confidence, model_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (store_id, item_id, target_date)
		DO UPDATE SET
			category_id = EXCLUDED.category_id,
			strategy = EXCLUDED.strategy,
			blended_prediction = EXCLUDED.blended_prediction,
			adjusted_prediction = EXCLUDED.adjusted_prediction,
			safety_stock = EXCLUDED.safety_stock,
			order_qty = EXCLUDED.order_qty,
			order_unit = EXCLUDED.order_unit,
			quality = EXCLUDED.quality,
			confidence = EXCLUDED.confidence,
			model_path = EXCLUDED.model_path,
			created_at = NOW()`

	_, err := r.pool.Exec(ctx, query,
		res.StoreID, res.ItemID, res.CategoryID, res.TargetDate, res.Strategy,
		res.BlendedPrediction, res.AdjustedPrediction, res.SafetyStock, res.OrderQty, res.OrderUnit,
		string(res.Quality), string(res.Confidence), res.ModelPath,
	)
	if err != nil {
		return fmt.Errorf("save prediction %s/%s: %w", res.StoreID, res.ItemID, err)
	}
	return nil
}

// Emit FeedbackSink 구현 (저장 실패는 로그만)
func (r *Repository) Emit(ctx context.Context, res contracts.PredictionResult) {
	if err := r.SavePrediction(ctx, res); err != nil {
		r.log.Warn().Err(err).Msg("prediction log write failed")
	}
}

// GetUnreconciled 실제 판매가 확정되었고 아직 검증하지 않은 예측
func (r *Repository) GetUnreconciled(ctx context.Context, from, to time.Time) ([]PredictionPair, error) {
	query := `
		SELECT p.store_id, p.item_id, p.category_id, p.target_date,
			   p.adjusted_prediction, p.order_qty, p.order_unit, s.sold
		FROM retail.prediction_logs p
		JOIN retail.daily_sales s
		  ON s.store_id = p.store_id AND s.item_id = p.item_id AND s.sales_date = p.target_date
		LEFT JOIN retail.prediction_outcomes o
		  ON o.store_id = p.store_id AND o.item_id = p.item_id AND o.target_date = p.target_date
		WHERE p.target_date BETWEEN $1 AND $2
		  AND o.store_id IS NULL
		ORDER BY p.target_date, p.store_id, p.item_id`

	rows, err := r.pool.Query(ctx, query, contracts.Day(from), contracts.Day(to))
	if err != nil {
		return nil, fmt.Errorf("query unreconciled predictions: %w", err)
	}
	defer rows.Close()

	var pairs []PredictionPair
	for rows.Next() {
		var p PredictionPair
		if err := rows.Scan(
			&p.StoreID, &p.ItemID, &p.CategoryID, &p.TargetDate,
			&p.Predicted, &p.OrderQty, &p.OrderUnit, &p.Actual,
		); err != nil {
			return nil, fmt.Errorf("scan prediction pair: %w", err)
		}
		pairs = append(pairs, p)
	}

	return pairs, rows.Err()
}

// SaveOutcomes 검증 결과 일괄 저장
func (r *Repository) SaveOutcomes(ctx context.Context, outcomes []Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO retail.prediction_outcomes
			(store_id, item_id, category_id, target_date, predicted, actual,
			 error, abs_error, ape, hit, reconciled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (store_id, item_id, target_date) DO UPDATE SET
			predicted = EXCLUDED.predicted,
			actual = EXCLUDED.actual,
			error = EXCLUDED.error,
			abs_error = EXCLUDED.abs_error,
			ape = EXCLUDED.ape,
			hit = EXCLUDED.hit,
			reconciled_at = EXCLUDED.reconciled_at`

	for _, o := range outcomes {
		batch.Queue(query,
			o.StoreID, o.ItemID, o.CategoryID, o.TargetDate, o.Predicted, o.Actual,
			o.Error, o.AbsError, o.APE, o.Hit, o.ReconciledAt)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range outcomes {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save outcome: %w", err)
		}
	}

	r.log.Debug().Int("outcomes", len(outcomes)).Msg("outcomes saved")
	return nil
}

// GetOutcomes 기간 내 검증 결과 (리포트 재계산용)
func (r *Repository) GetOutcomes(ctx context.Context, from, to time.Time) ([]Outcome, error) {
	query := `
		SELECT store_id, item_id, category_id, target_date, predicted, actual,
			   error, abs_error, ape, hit, reconciled_at
		FROM retail.prediction_outcomes
		WHERE target_date BETWEEN $1 AND $2
		ORDER BY target_date, store_id, item_id`

	rows, err := r.pool.Query(ctx, query, contracts.Day(from), contracts.Day(to))
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(
			&o.StoreID, &o.ItemID, &o.CategoryID, &o.TargetDate, &o.Predicted, &o.Actual,
			&o.Error, &o.AbsError, &o.APE, &o.Hit, &o.ReconciledAt,
		); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, o)
	}

	return out, rows.Err()
}

var (
	_ contracts.FeedbackSink = (*Repository)(nil)
	_ OutcomeStore           = (*Repository)(nil)
)
