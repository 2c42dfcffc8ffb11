package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/lhmoled/internal/errors"
	"codeberg.org/mutker/lhmoled/internal/pid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"
	configName      = "lhmoled"
	configType      = "toml"
)

// DefaultCorePropsPaths lists where SteelSeries GG/Engine write the
// GameSense address, newest layout last.
var DefaultCorePropsPaths = []string{
	`C:\ProgramData\SteelSeries\SteelSeries Engine 3\coreProps.json`,
	`C:\ProgramData\SteelSeries\GG\coreProps.json`,
	`C:\ProgramData\SteelSeries\SteelSeries GG\coreProps.json`,
}

type Config struct {
	UpdateInterval    time.Duration `mapstructure:"update_interval"`
	PageInterval      time.Duration `mapstructure:"page_interval"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	WatchdogInterval  time.Duration `mapstructure:"watchdog_interval"`
	PageLock          bool          `mapstructure:"page_lock"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFile           string        `mapstructure:"log_file"`
	PIDFile           string        `mapstructure:"pid_file"`

	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	GPU       GPUConfig       `mapstructure:"gpu"`
	Display   DisplayConfig   `mapstructure:"display"`
	GameSense GameSenseConfig `mapstructure:"gamesense"`
}

type TelemetryConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout"`
	Wait         time.Duration `mapstructure:"wait"`
}

type GPUConfig struct {
	LoadSource   string `mapstructure:"load_source"`
	NVMLFallback bool   `mapstructure:"nvml_fallback"`
}

type DisplayConfig struct {
	UseDegreeSymbol bool   `mapstructure:"use_degree_symbol"`
	DegreeSymbol    string `mapstructure:"degree_symbol"`
	BarWidth        int    `mapstructure:"bar_width"`
	BarFilled       string `mapstructure:"bar_filled"`
	BarEmpty        string `mapstructure:"bar_empty"`
}

type GameSenseConfig struct {
	Game              string        `mapstructure:"game"`
	DisplayName       string        `mapstructure:"display_name"`
	Developer         string        `mapstructure:"developer"`
	DeinitializeTimer time.Duration `mapstructure:"deinitialize_timer"`
	CorePropsPaths    []string      `mapstructure:"coreprops_paths"`
	AutoRebind        bool          `mapstructure:"auto_rebind"`
	RebindCooldown    time.Duration `mapstructure:"rebind_cooldown"`
	ResolveTTL        time.Duration `mapstructure:"resolve_ttl"`
	HealthTimeout     time.Duration `mapstructure:"health_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	Wait              time.Duration `mapstructure:"wait"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("update_interval", 3*time.Second)
	v.SetDefault("page_interval", 12*time.Second)
	v.SetDefault("heartbeat_interval", 5*time.Second)
	v.SetDefault("watchdog_interval", 10*time.Second)
	v.SetDefault("page_lock", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("pid_file", pid.DefaultPath())

	v.SetDefault("telemetry.url", "http://localhost:8085/data.json")
	v.SetDefault("telemetry.timeout", 2*time.Second)
	v.SetDefault("telemetry.ready_timeout", 1500*time.Millisecond)
	v.SetDefault("telemetry.wait", 30*time.Second)

	v.SetDefault("gpu.load_source", "d3d")
	v.SetDefault("gpu.nvml_fallback", false)

	v.SetDefault("display.use_degree_symbol", true)
	v.SetDefault("display.degree_symbol", "°")
	v.SetDefault("display.bar_width", 16)
	v.SetDefault("display.bar_filled", "#")
	v.SetDefault("display.bar_empty", "-")

	v.SetDefault("gamesense.game", "LHM_OLED")
	v.SetDefault("gamesense.display_name", "LHM OLED Monitor")
	v.SetDefault("gamesense.developer", "local")
	v.SetDefault("gamesense.deinitialize_timer", 60*time.Second)
	v.SetDefault("gamesense.coreprops_paths", DefaultCorePropsPaths)
	v.SetDefault("gamesense.auto_rebind", true)
	v.SetDefault("gamesense.rebind_cooldown", 10*time.Second)
	v.SetDefault("gamesense.resolve_ttl", 3*time.Second)
	v.SetDefault("gamesense.health_timeout", 1200*time.Millisecond)
	v.SetDefault("gamesense.request_timeout", 2*time.Second)
	v.SetDefault("gamesense.wait", 120*time.Second)
}

// Load reads defaults, the config file, LHMOLED_* environment variables and
// command line flags, in increasing order of precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: "LHMOLED", args: os.Args[1:]}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
	}

	flags := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	configFlag := flags.String("config", "", "Path to the configuration file")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	debugFlag := flags.Bool("debug", false, "Enable debugging mode")
	verboseFlag := flags.Bool("verbose", false, "Enable verbose logging")

	if err := flags.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, o, *configFlag); err != nil {
		return nil, err
	}

	if err := v.BindPFlag("log_level", flags.Lookup("log-level")); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	// --debug and --verbose are shorthands that win over log_level
	if *verboseFlag {
		config.LogLevel = string(LogLevelInfo)
	}
	if *debugFlag {
		config.LogLevel = string(LogLevelDebug)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func readConfigFile(v *viper.Viper, o options, flagPath string) error {
	errFactory := errors.New()

	path := o.configPath
	if flagPath != "" {
		path = flagPath
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configType)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", configName))
	}
	v.AddConfigPath("/etc")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	intervals := []struct {
		field string
		value time.Duration
	}{
		{"update_interval", c.UpdateInterval},
		{"page_interval", c.PageInterval},
		{"heartbeat_interval", c.HeartbeatInterval},
		{"watchdog_interval", c.WatchdogInterval},
		{"telemetry.timeout", c.Telemetry.Timeout},
		{"gamesense.health_timeout", c.GameSense.HealthTimeout},
		{"gamesense.request_timeout", c.GameSense.RequestTimeout},
	}
	for _, iv := range intervals {
		if iv.value <= 0 {
			return newValidationError(errors.ErrInvalidInterval, iv.field, iv.value, "must be positive")
		}
	}

	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		return newValidationError(errors.ErrInvalidLogLevel, "log_level", c.LogLevel, "unknown log level")
	}

	switch strings.ToLower(c.GPU.LoadSource) {
	case "d3d", "core":
	default:
		return newValidationError(errors.ErrInvalidConfig, "gpu.load_source", c.GPU.LoadSource, `must be "d3d" or "core"`)
	}

	if c.Telemetry.URL == "" {
		return newValidationError(errors.ErrInvalidConfig, "telemetry.url", c.Telemetry.URL, "must not be empty")
	}
	if len(c.GameSense.CorePropsPaths) == 0 {
		return newValidationError(errors.ErrInvalidConfig, "gamesense.coreprops_paths", c.GameSense.CorePropsPaths, "must list at least one file")
	}
	if c.GameSense.Game == "" {
		return newValidationError(errors.ErrInvalidConfig, "gamesense.game", c.GameSense.Game, "must not be empty")
	}
	if c.Display.BarWidth < 1 {
		return newValidationError(errors.ErrInvalidConfig, "display.bar_width", c.Display.BarWidth, "must be at least 1")
	}

	return nil
}
