package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/predictor"
	"github.com/wonny/ordercast/internal/runner"
	"github.com/wonny/ordercast/pkg/logger"
)

// ItemPredictor 단품 예측 (runner.Runner)
type ItemPredictor interface {
	PredictItem(ctx context.Context, q runner.ItemQuery) (*contracts.PredictionResult, error)
}

// PredictionHandler handles predict/explain endpoints
// ⭐ SSOT: 예측 조회 API 핸들러는 이 구조체에서만
type PredictionHandler struct {
	predictor    ItemPredictor
	defaultStore string
	now          func() time.Time
	logger       *logger.Logger
}

// NewPredictionHandler creates a new prediction handler
// defaultStore 는 store 파라미터가 없을 때 사용
func NewPredictionHandler(p ItemPredictor, defaultStore string, log *logger.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictor:    p,
		defaultStore: defaultStore,
		now:          time.Now,
		logger:       log,
	}
}

// Predict returns the order quantity prediction for an item
// GET /api/predict/{item}?store=&date=YYYY-MM-DD&stock=&pending=&category=
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	res, status, msg := h.resolve(r)
	if res == nil {
		respondError(w, status, msg)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Explain returns the human-readable breakdown of a prediction
// GET /api/explain/{item} (Predict 와 같은 파라미터)
func (h *PredictionHandler) Explain(w http.ResponseWriter, r *http.Request) {
	res, status, msg := h.resolve(r)
	if res == nil {
		respondError(w, status, msg)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(predictor.Explain(res)))
}

func (h *PredictionHandler) resolve(r *http.Request) (*contracts.PredictionResult, int, string) {
	q, err := h.parseQuery(r)
	if err != nil {
		return nil, http.StatusBadRequest, err.Error()
	}

	res, err := h.predictor.PredictItem(r.Context(), q)
	switch {
	case err == nil:
		return res, http.StatusOK, ""
	case contracts.IsIdentityError(err):
		return nil, http.StatusNotFound, err.Error()
	default:
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"store_id": q.StoreID,
			"item_id":  q.ItemID,
		}).Error("Prediction failed")
		return nil, http.StatusInternalServerError, "prediction failed"
	}
}

func (h *PredictionHandler) parseQuery(r *http.Request) (runner.ItemQuery, error) {
	params := r.URL.Query()
	q := runner.ItemQuery{
		StoreID:    params.Get("store"),
		ItemID:     mux.Vars(r)["item"],
		CategoryID: params.Get("category"),
		TargetDate: h.now(),
	}
	if q.StoreID == "" {
		q.StoreID = h.defaultStore
	}
	if q.StoreID == "" {
		return q, errors.New("store is required")
	}

	if d := params.Get("date"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return q, errors.New("date must be YYYY-MM-DD")
		}
		q.TargetDate = t
	}

	// stock/pending 중 하나라도 있으면 저장소 재고 대신 사용
	stock, pending := params.Get("stock"), params.Get("pending")
	if stock != "" || pending != "" {
		inv := contracts.Inventory{ItemID: q.ItemID}
		var err error
		if inv.Stock, err = parseQuantity(stock); err != nil {
			return q, errors.New("stock must be a non-negative number")
		}
		if inv.PendingQty, err = parseQuantity(pending); err != nil {
			return q, errors.New("pending must be a non-negative number")
		}
		q.Inventory = &inv
	}

	return q, nil
}

func parseQuantity(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, errors.New("invalid quantity")
	}
	return v, nil
}
