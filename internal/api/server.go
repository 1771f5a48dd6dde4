package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/ordercast/pkg/config"
	"github.com/wonny/ordercast/pkg/logger"
)

// 발주 예측 API 타임아웃 (예측/설명 응답은 피처 계산을 포함해 쓰기 제한이 더 김)
const (
	readTimeout       = 15 * time.Second
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

// Server 발주 예측 HTTP 서버 (예측/운영/메트릭 라우터를 감쌈)
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New PORT 설정으로 서버 생성 (router 는 NewRouter 결과)
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
		logger: log,
		config: cfg,
	}
}

// Addr 수신 주소
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start 요청 수신 시작 (Shutdown 전까지 블록, 정상 종료 시 nil)
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"addr":    s.httpServer.Addr,
		"env":     s.config.Env,
		"backend": s.config.Store.Backend,
	}).Info("Order prediction API listening")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown 진행 중인 예측 요청을 ctx 기한까지 마무리하고 종료
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Draining order prediction API")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown api server: %w", err)
	}
	return nil
}
