package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/ordercast/internal/scheduler"
	"github.com/wonny/ordercast/pkg/database"
	"github.com/wonny/ordercast/pkg/logger"
)

// DatabaseChecker DB 상태 조회 (database.DB)
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// JobController 스케줄러 조회/수동 실행 (scheduler.Scheduler)
type JobController interface {
	GetJobStats() map[string]scheduler.JobStats
	RunJob(jobName string) error
}

// OpsHandler handles health and job endpoints
type OpsHandler struct {
	db     DatabaseChecker // nil → DB 미사용 백엔드
	jobs   JobController   // nil → 스케줄러 없음
	logger *logger.Logger
}

// NewOpsHandler creates a new ops handler
func NewOpsHandler(db DatabaseChecker, jobs JobController, log *logger.Logger) *OpsHandler {
	return &OpsHandler{db: db, jobs: jobs, logger: log}
}

// Health returns server health status
// GET /health
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": "ordercast",
	}

	if h.db != nil {
		status, err := h.db.HealthCheck(r.Context())
		body["database"] = status
		if err != nil {
			h.logger.WithError(err).Warn("Database health check failed")
			body["status"] = "degraded"
			respondJSON(w, http.StatusServiceUnavailable, body)
			return
		}
	}

	respondJSON(w, http.StatusOK, body)
}

// Jobs returns scheduler job statistics
// GET /api/jobs
func (h *OpsHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondJSON(w, http.StatusOK, map[string]scheduler.JobStats{})
		return
	}
	respondJSON(w, http.StatusOK, h.jobs.GetJobStats())
}

// RunJob triggers a job outside of its schedule
// POST /api/jobs/{name}/run
func (h *OpsHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondError(w, http.StatusServiceUnavailable, "scheduler not running")
		return
	}

	name := mux.Vars(r)["name"]
	if err := h.jobs.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{"job": name, "status": "started"})
}
