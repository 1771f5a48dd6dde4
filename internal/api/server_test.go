package api

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ordercast/pkg/config"
	"github.com/wonny/ordercast/pkg/logger"
)

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := &config.Config{Port: "0", Env: "development", LogLevel: "error"}
	cfg.Store.Backend = config.BackendMemory
	log := logger.NewWithWriter(cfg, io.Discard)

	s := New(cfg, log, http.NotFoundHandler())
	assert.Equal(t, ":0", s.Addr())
	assert.Equal(t, writeTimeout, s.httpServer.WriteTimeout)
	assert.Equal(t, readHeaderTimeout, s.httpServer.ReadHeaderTimeout)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	// Start 가 리슨하기 전에 Shutdown 되어도 ErrServerClosed → nil
	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}
