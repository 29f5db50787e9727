package server

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/pokebattle/internal/config"
)

func TestHTTPServiceServesAndStops(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	svc := NewHTTPService(config.HTTPConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second}, handler, zaptest.NewLogger(t))
	require.NoError(t, svc.Listen())

	done := make(chan error, 1)
	go func() { done <- svc.Start() }()

	resp, err := http.Get("http://" + svc.Addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	svc.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("http service did not stop")
	}
}
