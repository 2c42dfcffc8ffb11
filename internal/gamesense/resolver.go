package gamesense

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/jsonc"

	"codeberg.org/mutker/lhmoled/internal/errors"
	"codeberg.org/mutker/lhmoled/internal/logger"
)

// Binding is the last validated GameSense base URL.
type Binding struct {
	Base        string
	ValidatedAt time.Time
}

// coreProps is the subset of SteelSeries GG's discovery file we use.
type coreProps struct {
	Address string `json:"address"`
}

// Resolver discovers the GameSense base URL from coreProps.json and checks
// that the server answers before handing it out. Results are cached for
// ResolveTTL; a failed discovery keeps the previous base.
type Resolver struct {
	paths         []string
	ttl           time.Duration
	healthTimeout time.Duration
	game          string
	client        *client
	now           func() time.Time

	mu        sync.Mutex
	binding   Binding
	lastCheck time.Time
}

func newResolver(cfg Config, c *client, now func() time.Time) *Resolver {
	return &Resolver{
		paths:         cfg.CorePropsPaths,
		ttl:           cfg.ResolveTTL,
		healthTimeout: cfg.HealthTimeout,
		game:          pingGame,
		client:        c,
		now:           now,
	}
}

// Current returns the cached binding without touching disk or network.
func (r *Resolver) Current() Binding {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.binding
}

// Resolve returns the base URL to post to, or "" when none is known. Unless
// force is set, a base checked within the last ResolveTTL is returned as is.
func (r *Resolver) Resolve(ctx context.Context, force bool) string {
	now := r.now()

	r.mu.Lock()
	if !force && r.binding.Base != "" && now.Sub(r.lastCheck) < r.ttl {
		base := r.binding.Base
		r.mu.Unlock()
		return base
	}
	r.lastCheck = now
	r.mu.Unlock()

	base, err := r.Discover()
	if err == nil && !r.Alive(ctx, base) {
		err = errors.New().WithData(ErrNoEndpoint, base)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		logger.Debug().
			Str("error_code", string(errors.CodeOf(err))).
			Str("current", r.binding.Base).
			Err(err).
			Msg("GameSense discovery failed, keeping current base")
		return r.binding.Base
	}

	if base != r.binding.Base {
		logger.Info().
			Str("previous", r.binding.Base).
			Str("base", base).
			Msg("GameSense base changed")
	}
	r.binding = Binding{Base: base, ValidatedAt: r.now()}

	return base
}

// Discover returns the address from the first readable coreProps.json.
func (r *Resolver) Discover() (string, error) {
	errFactory := errors.New()

	var errs []error
	for _, path := range r.paths {
		base, err := readCoreProps(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if base != "" {
			return base, nil
		}
	}

	if len(errs) > 0 {
		return "", errFactory.Wrap(ErrDiscoveryFailed, errors.Join(errs...))
	}

	return "", errFactory.New(ErrDiscoveryFailed)
}

// Alive posts a heartbeat for a throwaway game and reports whether the
// server accepted it.
func (r *Resolver) Alive(ctx context.Context, base string) bool {
	if base == "" {
		return false
	}

	status, err := r.client.post(ctx, base+pathHeartbeat, heartbeatPayload{Game: r.game}, r.healthTimeout)
	if err != nil {
		return false
	}

	return status == http.StatusOK || status == http.StatusNoContent
}

// readCoreProps returns "http://<address>" or "" when the file carries no
// address. SteelSeries GG has been seen writing comments and trailing commas.
func readCoreProps(path string) (string, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errFactory.Wrap(ErrCorePropsRead, err).WithData(path)
	}

	var props coreProps
	if err := json.Unmarshal(jsonc.ToJSON(data), &props); err != nil {
		return "", errFactory.Wrap(ErrCorePropsParse, err).WithData(path)
	}

	address := strings.TrimSpace(props.Address)
	if address == "" {
		return "", nil
	}

	return "http://" + address, nil
}
