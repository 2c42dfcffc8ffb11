package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"codeberg.org/mutker/lhmoled/internal/config"
	"codeberg.org/mutker/lhmoled/internal/display"
	"codeberg.org/mutker/lhmoled/internal/errors"
	"codeberg.org/mutker/lhmoled/internal/gamesense"
	"codeberg.org/mutker/lhmoled/internal/gpu"
	"codeberg.org/mutker/lhmoled/internal/logger"
	"codeberg.org/mutker/lhmoled/internal/monitor"
	"codeberg.org/mutker/lhmoled/internal/pid"
	"codeberg.org/mutker/lhmoled/internal/ram"
	"codeberg.org/mutker/lhmoled/internal/telemetry"
)

const retryInterval = time.Second

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService(), cfg.LogFile); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	os.Exit(run())
}

func run() int {
	defer logger.Close()

	if err := pid.Write(cfg.PIDFile); err != nil {
		if errors.HasCode(err, errors.ErrAlreadyRunning) {
			logger.Error().Err(err).Str("pid_file", cfg.PIDFile).Msg("Another instance is already running")
		} else {
			logger.Error().Err(err).Msg("failed to write PID file")
		}
		return 1
	}
	defer func() {
		if err := pid.Remove(cfg.PIDFile); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	source, err := newTelemetrySource()
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize telemetry")
		return 1
	}
	defer source.Close()

	publisher, err := newPublisher()
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize GameSense")
		return 1
	}
	defer publisher.Close()

	var opts []monitor.Option
	if nvml := openGPU(); nvml != nil {
		defer func() {
			if err := nvml.Shutdown(); err != nil {
				logger.Error().Err(err).Msg("failed to shut down NVML")
			}
		}()
		opts = append(opts, monitor.WithGPU(nvml))
	}

	mon := monitor.New(monitor.Config{
		UpdateInterval:    cfg.UpdateInterval,
		PageInterval:      cfg.PageInterval,
		HeartbeatInterval: cfg.HeartbeatInterval,
		WatchdogInterval:  cfg.WatchdogInterval,
		PageLock:          cfg.PageLock,
		TelemetryWait:     cfg.Telemetry.Wait,
		GameSenseWait:     cfg.GameSense.Wait,
		Tick:              monitor.DefaultTick,
	}, source, publisher, ram.NewReader(), display.NewRenderer(display.Config{
		UseDegreeSymbol: cfg.Display.UseDegreeSymbol,
		DegreeSymbol:    cfg.Display.DegreeSymbol,
		BarWidth:        cfg.Display.BarWidth,
		BarFilled:       cfg.Display.BarFilled,
		BarEmpty:        cfg.Display.BarEmpty,
	}), opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return mon.Run(gctx)
	})
	g.Go(func() error {
		return handleSignals(gctx, cancel)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrMainLoop, err)).Msg("error in main loop")
		return 1
	}

	logger.Info().Msg("Exiting...")

	return 0
}

func handleSignals(ctx context.Context, cancel context.CancelFunc) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		logger.Info().Msg("Received termination signal.")
		cancel()
	case <-ctx.Done():
	}

	return nil
}

func newTelemetrySource() (*telemetry.Source, error) {
	loadSource, err := telemetry.ParseLoadSource(cfg.GPU.LoadSource)
	if err != nil {
		return nil, err
	}

	return telemetry.NewSource(telemetry.Config{
		URL:           cfg.Telemetry.URL,
		Timeout:       cfg.Telemetry.Timeout,
		ReadyTimeout:  cfg.Telemetry.ReadyTimeout,
		RetryInterval: retryInterval,
		LoadSource:    loadSource,
	})
}

func newPublisher() (*gamesense.Publisher, error) {
	gs := cfg.GameSense

	return gamesense.New(gamesense.Config{
		Game:              gs.Game,
		DisplayName:       gs.DisplayName,
		Developer:         gs.Developer,
		DeinitializeTimer: gs.DeinitializeTimer,
		Events:            display.Events(),
		CorePropsPaths:    gs.CorePropsPaths,
		AutoRebind:        gs.AutoRebind,
		RebindCooldown:    gs.RebindCooldown,
		ResolveTTL:        gs.ResolveTTL,
		HealthTimeout:     gs.HealthTimeout,
		RequestTimeout:    gs.RequestTimeout,
		RetryInterval:     retryInterval,
	})
}

// openGPU returns nil when the NVML fallback is disabled or unavailable.
func openGPU() *gpu.GPU {
	if !cfg.GPU.NVMLFallback {
		return nil
	}

	g, err := gpu.New(0)
	if err != nil {
		logger.Warn().Err(err).Msg("NVML unavailable, GPU fallback disabled")
		return nil
	}

	return g
}
