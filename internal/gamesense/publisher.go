package gamesense

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/lhmoled/internal/errors"
	"codeberg.org/mutker/lhmoled/internal/logger"
)

// Publisher sends frames to GameSense and repairs the registration when the
// server restarts or moves to another port.
type Publisher struct {
	cfg      Config
	client   *client
	resolver *Resolver
	now      func() time.Time

	mu         sync.Mutex
	sequence   int
	lastRebind time.Time
	rebinds    int
}

type Option func(*Publisher)

// WithClock replaces time.Now for cache and cooldown decisions.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func New(cfg Config, opts ...Option) (*Publisher, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	p := &Publisher{
		cfg:    cfg,
		client: newClient(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resolver = newResolver(cfg, p.client, p.now)

	return p, nil
}

func (p *Publisher) Resolver() *Resolver {
	return p.resolver
}

// Heartbeat keeps the registration from expiring.
func (p *Publisher) Heartbeat(ctx context.Context) error {
	return p.post(ctx, pathHeartbeat, heartbeatPayload{Game: p.cfg.Game})
}

// Register announces the application metadata.
func (p *Publisher) Register(ctx context.Context) error {
	return p.post(ctx, pathMetadata, metadataPayload{
		Game:                p.cfg.Game,
		DisplayName:         p.cfg.DisplayName,
		Developer:           p.cfg.Developer,
		DeinitializeTimerMS: p.cfg.DeinitializeTimer.Milliseconds(),
	})
}

// Bind binds event to the two line screen layout.
func (p *Publisher) Bind(ctx context.Context, event string) error {
	return p.post(ctx, pathBindEvent, newBindPayload(p.cfg.Game, event))
}

// BindAll binds every configured event, attempting all of them.
func (p *Publisher) BindAll(ctx context.Context) error {
	var errs []error
	for _, event := range p.cfg.Events {
		if err := p.Bind(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Send publishes a two line frame for event. Lines are cut to LineWidth.
// The sequence value advances on every call, delivered or not.
func (p *Publisher) Send(ctx context.Context, event, line1, line2 string) error {
	p.mu.Lock()
	value := p.sequence
	p.sequence++
	p.mu.Unlock()

	return p.post(ctx, pathGameEvent, eventPayload{
		Game:  p.cfg.Game,
		Event: event,
		Data: eventData{
			Value: value,
			Frame: frame{Line1: Truncate(line1), Line2: Truncate(line2)},
		},
	})
}

// Sequence returns the value the next frame will carry.
func (p *Publisher) Sequence() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.sequence
}

// Rebinds returns how many rebinds have run.
func (p *Publisher) Rebinds() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.rebinds
}

// Rebind registers the game and binds all events again. Failures are logged.
func (p *Publisher) Rebind(ctx context.Context) {
	p.mu.Lock()
	p.rebinds++
	p.mu.Unlock()

	err := errors.Join(p.Register(ctx), p.BindAll(ctx))
	if err != nil {
		logger.Warn().Err(err).Msg("Rebind incomplete")
		return
	}

	logger.Info().Msg("Rebind done")
}

// Healthy reports whether the resolved endpoint answers a probe heartbeat.
func (p *Publisher) Healthy(ctx context.Context) bool {
	return p.resolver.Alive(ctx, p.resolver.Resolve(ctx, false))
}

// Recover forces re-discovery and rebinds when GameSense is unhealthy.
// It reports whether a rebind ran.
func (p *Publisher) Recover(ctx context.Context) bool {
	if !p.cfg.AutoRebind || p.Healthy(ctx) {
		return false
	}

	base := p.resolver.Resolve(ctx, true)
	if !p.claimRebind() {
		logger.Debug().Str("base", base).Msg("GameSense unhealthy, rebind cooling down")
		return false
	}

	logger.Warn().Str("base", base).Msg("GameSense unhealthy, rebinding")
	p.Rebind(ctx)

	return true
}

// WaitReady forces discovery every RetryInterval until an endpoint is found,
// timeout elapses or ctx ends.
func (p *Publisher) WaitReady(ctx context.Context, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	logger.Info().Dur("timeout", timeout).Msg("Waiting for GameSense")
	for {
		if base := p.resolver.Resolve(ctx, true); base != "" {
			logger.Info().Str("base", base).Msg("GameSense ready")
			return true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		timer := time.NewTimer(min(p.cfg.RetryInterval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}

	logger.Warn().Dur("timeout", timeout).Msg("GameSense not ready")

	return false
}

// Close releases idle connections.
func (p *Publisher) Close() {
	p.client.close()
}

func (p *Publisher) post(ctx context.Context, path string, payload any) error {
	errFactory := errors.New()

	base := p.resolver.Resolve(ctx, false)
	if base == "" {
		logger.Debug().Str("path", path).Msg("No GameSense endpoint, dropping request")
		return nil
	}

	status, err := p.client.post(ctx, base+path, payload, p.cfg.RequestTimeout)
	if err != nil {
		if p.cfg.AutoRebind && p.claimRebind() {
			logger.Warn().Str("path", path).Err(err).Msg("GameSense unreachable, rediscovering and rebinding")
			p.resolver.Resolve(ctx, true)
			p.Rebind(ctx)
		}
		return err
	}

	if status >= 400 {
		if p.cfg.AutoRebind && p.claimRebind() {
			logger.Warn().Str("path", path).Int("status", status).Msg("GameSense rejected request, rebinding")
			p.Rebind(ctx)
		}
		return errFactory.WithData(ErrUnexpectedStatus, status)
	}

	return nil
}

// claimRebind takes the rebind slot if the cooldown has passed. The slot is
// taken before the rebind runs so failures inside it cannot start another.
func (p *Publisher) claimRebind() bool {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.lastRebind.IsZero() && now.Sub(p.lastRebind) <= p.cfg.RebindCooldown {
		return false
	}
	p.lastRebind = now

	return true
}
