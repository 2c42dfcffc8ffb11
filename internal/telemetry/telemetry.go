package telemetry

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"codeberg.org/mutker/lhmoled/internal/errors"
	"codeberg.org/mutker/lhmoled/internal/logger"
)

// Source polls the LibreHardwareMonitor remote web server.
type Source struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

func NewSource(cfg Config) (*Source, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	return &Source{
		cfg:    cfg,
		client: &http.Client{},
		now:    time.Now,
	}, nil
}

// Fetch downloads and decodes the sensor tree.
func (s *Source) Fetch(ctx context.Context) (*Node, error) {
	body, status, err := s.get(ctx, s.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, errors.New().WithData(ErrUnexpectedStatus, status)
	}

	return Decode(body)
}

// Read fetches the tree and extracts a Snapshot. When the server is down or
// the document is malformed every reading is Unknown.
func (s *Source) Read(ctx context.Context) Snapshot {
	root, err := s.Fetch(ctx)
	if err != nil {
		logger.Debug().
			Str("url", s.cfg.URL).
			Str("error_code", string(errors.CodeOf(err))).
			Err(err).
			Msg("Telemetry unavailable")
		return Snapshot{Timestamp: s.now()}
	}

	snapshot := Extract(root, s.cfg.LoadSource)
	snapshot.Timestamp = s.now()

	return snapshot
}

// Ready reports whether the server answers with a sensor tree.
func (s *Source) Ready(ctx context.Context) bool {
	body, status, err := s.get(ctx, s.cfg.ReadyTimeout)
	if err != nil {
		return false
	}

	return status == http.StatusOK && bytes.Contains(body, []byte("Children"))
}

// WaitReady polls Ready until it succeeds, timeout elapses or ctx ends.
func (s *Source) WaitReady(ctx context.Context, timeout time.Duration) bool {
	deadline := s.now().Add(timeout)

	for {
		if s.Ready(ctx) {
			logger.Info().Str("url", s.cfg.URL).Msg("LHM ready")
			return true
		}

		remaining := deadline.Sub(s.now())
		if remaining <= 0 {
			break
		}

		wait := min(s.cfg.RetryInterval, remaining)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}

	logger.Warn().Str("url", s.cfg.URL).Dur("timeout", timeout).Msg("LHM not ready")

	return false
}

func (s *Source) get(ctx context.Context, timeout time.Duration) ([]byte, int, error) {
	errFactory := errors.New()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, 0, errFactory.Wrap(ErrRequestFailed, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, errFactory.Wrap(ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, resp.StatusCode, errFactory.Wrap(ErrReadBody, err)
	}

	return body, resp.StatusCode, nil
}

// Close releases idle connections.
func (s *Source) Close() {
	s.client.CloseIdleConnections()
}
