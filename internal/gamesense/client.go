package gamesense

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"codeberg.org/mutker/lhmoled/internal/errors"
)

const maxResponseBodySize = 64 << 10

// client posts JSON bodies with a per request timeout.
type client struct {
	httpClient *http.Client
}

func newClient() *client {
	return &client{httpClient: &http.Client{}}
}

// post returns the response status. A non-nil error means no response was
// received at all.
func (c *client) post(ctx context.Context, url string, payload any, timeout time.Duration) (int, error) {
	errFactory := errors.New()

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return 0, errFactory.Wrap(ErrEncodePayload, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return 0, errFactory.Wrap(ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errFactory.Wrap(ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))

	return resp.StatusCode, nil
}

func (c *client) close() {
	c.httpClient.CloseIdleConnections()
}
