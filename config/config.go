// Package config defines the configuration surface of the logger service:
// a YAML file form plus a compatibility layer for gflogger-style flat
// property keys. Configuration is an explicit value handed to the service
// factory; there is no process-wide lookup.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/gobwas/glob"
	"github.com/relex/ringlog/base"
	"github.com/relex/ringlog/defs"
	"github.com/relex/ringlog/ring"
	"github.com/relex/ringlog/util"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Size is a byte count accepting both plain numbers and human-readable forms
// like "64KB" or "1M" in YAML
type Size datasize.ByteSize

// Bytes returns the size as a plain byte count
func (s Size) Bytes() uint64 {
	return datasize.ByteSize(s).Bytes()
}

// String returns the human-readable form
func (s Size) String() string {
	return datasize.ByteSize(s).String()
}

// UnmarshalYAML decodes a size scalar through the datasize parser
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	parsed, err := datasize.ParseString(text)
	if err != nil {
		return fmt.Errorf("invalid size '%s': %w", text, err)
	}
	*s = Size(parsed)
	return nil
}

// MarshalYAML encodes the human-readable form
func (s Size) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Appender types accepted in configuration
const (
	AppenderConsole  = "console"
	AppenderFile     = "file"
	AppenderRotating = "rotating"
	AppenderNull     = "null"
)

var appenderTypes = []string{AppenderConsole, AppenderFile, AppenderRotating, AppenderNull}

// Config is the root configuration of one logger service
type Config struct {
	Name                string           `yaml:"name"`                // service name, labels metrics
	BufferSize          Size             `yaml:"bufferSize"`          // payload capacity per record slot
	RingSize            int              `yaml:"ringSize"`            // number of slots, power of two
	Multibyte           bool             `yaml:"multibyte"`           // character payload buffers instead of byte buffers
	LogLevel            base.Level       `yaml:"logLevel"`            // default minimum level
	TimeZoneID          string           `yaml:"timeZoneId"`          // layout time zone, e.g. "UTC" or "Europe/Helsinki"
	Language            string           `yaml:"language"`            // layout locale hint, carried for custom layouts
	Pattern             string           `yaml:"pattern"`             // layout pattern string, carried for custom layouts
	ImmediateFlush      bool             `yaml:"immediateFlush"`      // flush the output buffer on every record
	BufferedIOThreshold int              `yaml:"bufferedIOThreshold"` // buffered records forcing a flush
	AwaitTimeoutMillis  int              `yaml:"awaitTimeout"`        // park interval of blocking/sleeping wait strategies
	WaitStrategy        string           `yaml:"waitStrategy"`        // busy-spin | yielding | sleeping | blocking
	SingleProducer      bool             `yaml:"singleProducer"`      // opt-in single-producer sequencer
	Levels              []LevelOverride  `yaml:"levels"`              // per-logger level overrides, first match wins
	Appenders           []AppenderConfig `yaml:"appenders"`
}

// LevelOverride assigns a minimum level to loggers whose name matches a glob
// pattern, e.g. "db.*"
type LevelOverride struct {
	Match string     `yaml:"match"`
	Level base.Level `yaml:"level"`
}

// AppenderConfig defines one appender: a sink plus its flush policy overrides
type AppenderConfig struct {
	Type           string      `yaml:"type"`
	Level          *base.Level `yaml:"level"`          // optional, defaults to the service level
	Path           string      `yaml:"path"`           // file and rotating types
	RotateSize     Size        `yaml:"rotateSize"`     // rotating type: size triggering rotation
	MaxBackups     int         `yaml:"maxBackups"`     // rotating type: rotated files to keep
	Compress       bool        `yaml:"compress"`       // rotating type: gzip rotated files
	ImmediateFlush *bool       `yaml:"immediateFlush"` // optional, defaults to the service setting
}

// Default returns the configuration used when keys are unspecified
func Default() Config {
	return Config{
		Name:                "ringlog",
		BufferSize:          Size(defs.DefaultSlotBufferBytes),
		RingSize:            defs.DefaultRingSize,
		Multibyte:           false,
		LogLevel:            base.ErrorLevel,
		Pattern:             "%m%n",
		ImmediateFlush:      false,
		BufferedIOThreshold: defs.DefaultBufferedIOThreshold,
		AwaitTimeoutMillis:  10,
		WaitStrategy:        ring.WaitBlocking,
		Appenders:           []AppenderConfig{{Type: AppenderConsole}},
	}
}

// Load reads and validates a YAML configuration file
func Load(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(content)
}

// Parse decodes and validates YAML configuration on top of the defaults;
// unknown fields are rejected
func Parse(content []byte) (Config, error) {
	cfg := Default()
	if err := util.UnmarshalYamlStrict(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AwaitTimeout returns the park interval as a duration
func (cfg *Config) AwaitTimeout() time.Duration {
	return time.Duration(cfg.AwaitTimeoutMillis) * time.Millisecond
}

// Validate checks every cross-field constraint; a valid Config always builds
// a working service
func (cfg *Config) Validate() error {
	if cfg.Name == "" {
		return fmt.Errorf(".name is unspecified")
	}
	if cfg.BufferSize.Bytes() == 0 {
		return fmt.Errorf(".bufferSize must be positive")
	}
	if cfg.RingSize <= 0 || !util.IsPowerOfTwo(int64(cfg.RingSize)) {
		return fmt.Errorf(".ringSize must be a positive power of two, got %d", cfg.RingSize)
	}
	if !slices.Contains(ring.WaitStrategyNames, cfg.WaitStrategy) {
		return fmt.Errorf(".waitStrategy: unsupported '%s', accepted: %v", cfg.WaitStrategy, ring.WaitStrategyNames)
	}
	if cfg.BufferedIOThreshold <= 0 {
		return fmt.Errorf(".bufferedIOThreshold must be positive")
	}
	if cfg.AwaitTimeoutMillis <= 0 {
		return fmt.Errorf(".awaitTimeout must be positive milliseconds")
	}
	if cfg.TimeZoneID != "" {
		if _, err := time.LoadLocation(cfg.TimeZoneID); err != nil {
			return fmt.Errorf(".timeZoneId: %w", err)
		}
	}
	for i, override := range cfg.Levels {
		if _, err := glob.Compile(override.Match); err != nil {
			return fmt.Errorf(".levels[%d].match: invalid glob '%s': %w", i, override.Match, err)
		}
	}
	if len(cfg.Appenders) == 0 {
		return fmt.Errorf(".appenders must not be empty")
	}
	for i, app := range cfg.Appenders {
		if !slices.Contains(appenderTypes, app.Type) {
			return fmt.Errorf(".appenders[%d].type: unsupported '%s', accepted: %v", i, app.Type, appenderTypes)
		}
		switch app.Type {
		case AppenderFile, AppenderRotating:
			if app.Path == "" {
				return fmt.Errorf(".appenders[%d].path is unspecified", i)
			}
		}
		if app.Type == AppenderRotating && app.RotateSize.Bytes() == 0 {
			return fmt.Errorf(".appenders[%d].rotateSize must be positive", i)
		}
	}
	return nil
}

// Location resolves the configured time zone, defaulting to the local one
func (cfg *Config) Location() (*time.Location, error) {
	if cfg.TimeZoneID == "" {
		return time.Local, nil
	}
	return time.LoadLocation(cfg.TimeZoneID)
}

// CompileLevelOverrides compiles the glob matchers once for logger creation;
// call after Validate
func (cfg *Config) CompileLevelOverrides() []CompiledLevelOverride {
	compiled := make([]CompiledLevelOverride, 0, len(cfg.Levels))
	for _, override := range cfg.Levels {
		matcher, err := glob.Compile(override.Match)
		if err != nil {
			continue // rejected by Validate already
		}
		compiled = append(compiled, CompiledLevelOverride{matcher, override.Level})
	}
	return compiled
}

// CompiledLevelOverride is a LevelOverride with its glob matcher compiled
type CompiledLevelOverride struct {
	Matcher glob.Glob
	Level   base.Level
}

// ResolveLevel returns the minimum level for a logger name: the first
// matching override wins, otherwise the default level
func ResolveLevel(overrides []CompiledLevelOverride, defaultLevel base.Level, loggerName string) base.Level {
	for _, override := range overrides {
		if override.Matcher.Match(loggerName) {
			return override.Level
		}
	}
	return defaultLevel
}
