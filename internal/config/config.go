package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Harness    HarnessConfig    `koanf:"harness"`
	Encoder    EncoderConfig    `koanf:"encoder"`
	Memory     MemoryConfig     `koanf:"memory"`
	Watchdog   WatchdogConfig   `koanf:"watchdog"`
	Fuzz       FuzzConfig       `koanf:"fuzz"`
	Throughput ThroughputConfig `koanf:"throughput"`
}

type HarnessConfig struct {
	LogLevel     string `koanf:"log_level"`
	GuardTimeout string `koanf:"guard_timeout"`
	LockPath     string `koanf:"lock_path"`
	ReportPath   string `koanf:"report_path"`
	GuardArgs    string `koanf:"guard_args"`
}

type EncoderConfig struct {
	Codec   string `koanf:"codec"`
	Bitrate int    `koanf:"bitrate"`
}

type MemoryConfig struct {
	Iterations  int `koanf:"iterations"`
	SampleEvery int `koanf:"sample_every"`
	Width       int `koanf:"width"`
	Height      int `koanf:"height"`
	LimitMB     int `koanf:"limit_mb"`
}

type WatchdogConfig struct {
	Interval string `koanf:"interval"`
	Frames   int    `koanf:"frames"`
	Width    int    `koanf:"width"`
	Height   int    `koanf:"height"`
	MaxLag   string `koanf:"max_lag"`
	Severity string `koanf:"severity"`
}

type FuzzConfig struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

type ThroughputConfig struct {
	Frames    int     `koanf:"frames"`
	Width     int     `koanf:"width"`
	Height    int     `koanf:"height"`
	TargetFPS float64 `koanf:"target_fps"`
}

const (
	DefaultHarnessLogLevel     = "info"
	DefaultHarnessGuardTimeout = "5m"
	DefaultHarnessReportPath   = ""
	DefaultHarnessGuardArgs    = ""

	DefaultEncoderCodec   = "avc1.42001f"
	DefaultEncoderBitrate = 1_000_000

	DefaultMemoryIterations  = 10_000
	DefaultMemorySampleEvery = 1_000
	DefaultMemoryWidth       = 640
	DefaultMemoryHeight      = 480
	DefaultMemoryLimitMB     = 50

	DefaultWatchdogInterval = "10ms"
	DefaultWatchdogFrames   = 50
	DefaultWatchdogWidth    = 1920
	DefaultWatchdogHeight   = 1080
	DefaultWatchdogMaxLag   = "20ms"
	DefaultWatchdogSeverity = "warn"

	DefaultFuzzWidth  = 100
	DefaultFuzzHeight = 100

	DefaultThroughputFrames    = 100
	DefaultThroughputWidth     = 1280
	DefaultThroughputHeight    = 720
	DefaultThroughputTargetFPS = 30.0
)

// WatchdogSeverity values. "warn" keeps the lag threshold advisory; "fail"
// promotes it to a hard verdict.
const (
	SeverityWarn = "warn"
	SeverityFail = "fail"
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"harness.log_level":     DefaultHarnessLogLevel,
		"harness.guard_timeout": DefaultHarnessGuardTimeout,
		"harness.lock_path":     defaultLockPath(),
		"harness.report_path":   DefaultHarnessReportPath,
		"harness.guard_args":    DefaultHarnessGuardArgs,
		"encoder.codec":         DefaultEncoderCodec,
		"encoder.bitrate":       DefaultEncoderBitrate,
		"memory.iterations":     DefaultMemoryIterations,
		"memory.sample_every":   DefaultMemorySampleEvery,
		"memory.width":          DefaultMemoryWidth,
		"memory.height":         DefaultMemoryHeight,
		"memory.limit_mb":       DefaultMemoryLimitMB,
		"watchdog.interval":     DefaultWatchdogInterval,
		"watchdog.frames":       DefaultWatchdogFrames,
		"watchdog.width":        DefaultWatchdogWidth,
		"watchdog.height":       DefaultWatchdogHeight,
		"watchdog.max_lag":      DefaultWatchdogMaxLag,
		"watchdog.severity":     DefaultWatchdogSeverity,
		"fuzz.width":            DefaultFuzzWidth,
		"fuzz.height":           DefaultFuzzHeight,
		"throughput.frames":     DefaultThroughputFrames,
		"throughput.width":      DefaultThroughputWidth,
		"throughput.height":     DefaultThroughputHeight,
		"throughput.target_fps": DefaultThroughputTargetFPS,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".guardrail", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	k.Load(env.Provider("GUARDRAIL_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "GUARDRAIL_")), "_", ".", -1)
	}), nil)

	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if cfg.Watchdog.Severity != SeverityWarn && cfg.Watchdog.Severity != SeverityFail {
		cfg.Watchdog.Severity = SeverityWarn
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects counts that would skip a guardrail's measurement loop
// entirely and let it pass without measuring anything.
func (c *Config) validate() error {
	counts := []struct {
		key   string
		value int
	}{
		{"memory.iterations", c.Memory.Iterations},
		{"memory.sample_every", c.Memory.SampleEvery},
		{"watchdog.frames", c.Watchdog.Frames},
		{"throughput.frames", c.Throughput.Frames},
	}
	for _, count := range counts {
		if count.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", count.key, count.value)
		}
	}
	return nil
}

func defaultLockPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "guardrail.lock")
	}
	return filepath.Join(home, ".guardrail", "harness.lock")
}
