package gamesense

import (
	"time"

	"codeberg.org/mutker/lhmoled/internal/errors"
)

const (
	// LineWidth is the number of characters a screened-128x40 line shows.
	LineWidth = 18

	defaultCooldown      = 10 * time.Second
	defaultResolveTTL    = 3 * time.Second
	defaultHealthTimeout = 1200 * time.Millisecond
	defaultTimeout       = 2 * time.Second
	defaultRetryInterval = time.Second
)

type Config struct {
	Game              string
	DisplayName       string
	Developer         string
	DeinitializeTimer time.Duration
	// Events are bound to the two line screen layout on every (re)bind.
	Events         []string
	CorePropsPaths []string
	AutoRebind     bool
	RebindCooldown time.Duration
	ResolveTTL     time.Duration
	HealthTimeout  time.Duration
	RequestTimeout time.Duration
	RetryInterval  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Game:              "LHM_OLED",
		DisplayName:       "LHM OLED Monitor",
		Developer:         "local",
		DeinitializeTimer: 60 * time.Second,
		AutoRebind:        true,
		RebindCooldown:    defaultCooldown,
		ResolveTTL:        defaultResolveTTL,
		HealthTimeout:     defaultHealthTimeout,
		RequestTimeout:    defaultTimeout,
		RetryInterval:     defaultRetryInterval,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	switch {
	case c.Game == "":
		return errFactory.WithData(ErrInvalidConfig, "game must not be empty")
	case len(c.CorePropsPaths) == 0:
		return errFactory.WithData(ErrInvalidConfig, "no coreProps.json candidates")
	case c.HealthTimeout <= 0 || c.RequestTimeout <= 0 || c.RetryInterval <= 0:
		return errFactory.WithData(ErrInvalidConfig, "timeouts must be positive")
	case c.RebindCooldown < 0 || c.ResolveTTL < 0:
		return errFactory.WithData(ErrInvalidConfig, "cooldown and ttl must not be negative")
	}

	return nil
}
