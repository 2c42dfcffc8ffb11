package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/mutker/lhmoled/internal/errors"
	"codeberg.org/mutker/lhmoled/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSource(t *testing.T, url string) *telemetry.Source {
	t.Helper()
	cfg := telemetry.DefaultConfig()
	cfg.URL = url
	cfg.Timeout = time.Second
	cfg.ReadyTimeout = 500 * time.Millisecond
	cfg.RetryInterval = 10 * time.Millisecond
	src, err := telemetry.NewSource(cfg)
	require.NoError(t, err)
	t.Cleanup(src.Close)
	return src
}

func TestSourceRead(t *testing.T) {
	data, err := os.ReadFile("testdata/data.json")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	snap := newSource(t, server.URL+"/data.json").Read(context.Background())

	assertReading(t, 52.4, snap.CPUTemperature)
	assertReading(t, 37.0, snap.CPULoad)
	assert.False(t, snap.Timestamp.IsZero())
}

func TestSourceReadDegrades(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"malformed": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"Children": [`))
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			snap := newSource(t, server.URL).Read(context.Background())
			for metric, reading := range snap.Readings() {
				assert.False(t, reading.Valid, "%s must be unknown", metric)
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		snap := newSource(t, url).Read(context.Background())
		for metric, reading := range snap.Readings() {
			assert.False(t, reading.Valid, "%s must be unknown", metric)
		}
	})
}

func TestSourceFetchErrorCodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newSource(t, server.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrUnexpectedStatus, errors.CodeOf(err))
}

func TestSourceReady(t *testing.T) {
	ready := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Children": []}`))
	}))
	defer ready.Close()

	starting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer starting.Close()

	assert.True(t, newSource(t, ready.URL).Ready(context.Background()))
	assert.False(t, newSource(t, starting.URL).Ready(context.Background()))
}

func TestSourceWaitReady(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"Children": []}`))
	}))
	defer server.Close()

	assert.True(t, newSource(t, server.URL).WaitReady(context.Background(), 5*time.Second))
	assert.Equal(t, int32(3), calls.Load())

	down := httptest.NewServer(http.NotFoundHandler())
	defer down.Close()
	assert.False(t, newSource(t, down.URL).WaitReady(context.Background(), 50*time.Millisecond))
}

func TestNewSourceValidates(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	cfg.LoadSource = "average"

	_, err := telemetry.NewSource(cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, telemetry.ErrInvalidLoadSource))
}
