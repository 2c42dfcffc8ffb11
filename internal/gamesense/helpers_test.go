package gamesense_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/lhmoled/internal/gamesense"
)

var testEvents = []string{"CPU_PAGE", "GPU_PAGE", "RAM_PAGE"}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type request struct {
	Path string
	Body string
}

// fakeServer records every request and answers 200 unless told otherwise.
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []request
	status   map[string]int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	s := &fakeServer{status: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.requests = append(s.requests, request{Path: r.URL.Path, Body: strings.TrimSpace(string(body))})
		code, ok := s.status[r.URL.Path]
		s.mu.Unlock()

		if !ok {
			code = http.StatusOK
		}
		w.WriteHeader(code)
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *fakeServer) setStatus(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = code
}

// bodies returns the bodies received on path, excluding liveness probes.
func (s *fakeServer) bodies(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, r := range s.requests {
		if r.Path == path && r.Body != `{"game":"PING"}` {
			out = append(out, r.Body)
		}
	}
	return out
}

func (s *fakeServer) address() string {
	return strings.TrimPrefix(s.URL, "http://")
}

func writeCoreProps(t *testing.T, path, address string) {
	t.Helper()
	data := `{"address":"` + address + `","encrypted_address":"127.0.0.1:0"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
}

func corePropsPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "coreProps.json")
}

func testConfig(paths ...string) gamesense.Config {
	cfg := gamesense.DefaultConfig()
	cfg.Events = testEvents
	cfg.CorePropsPaths = paths
	cfg.RetryInterval = 10 * time.Millisecond
	return cfg
}

func newPublisher(t *testing.T, cfg gamesense.Config, c *clock) *gamesense.Publisher {
	t.Helper()

	p, err := gamesense.New(cfg, gamesense.WithClock(c.Now))
	require.NoError(t, err)
	t.Cleanup(p.Close)

	return p
}
