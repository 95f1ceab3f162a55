package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/relex/ringlog/base"
)

// Property keys recognized by FromProperties, matching the gflogger
// system-property names so existing deployments can reuse their settings
const (
	PropBufferSize          = "gflogger.buffer.size"
	PropMultibyte           = "gflogger.multibyte"
	PropLogLevel            = "gflogger.loglevel"
	PropTimeZoneID          = "gflogger.timeZoneId"
	PropLanguage            = "gflogger.language"
	PropPattern             = "gflogger.pattern"
	PropImmediateFlush      = "gflogger.immediateFlush"
	PropBufferedIOThreshold = "gflogger.bufferedIOThreshold"
	PropAwaitTimeout        = "gflogger.awaitTimeout"
)

// FromProperties applies flat property keys on top of the configuration.
// Only "gflogger."-prefixed keys are considered; an unrecognized one fails.
// The map is an explicit input, never read from process-wide state.
func (cfg *Config) FromProperties(props map[string]string) error {
	for key, value := range props {
		if !strings.HasPrefix(key, "gflogger.") {
			continue
		}
		if err := cfg.applyProperty(key, value); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
	}
	return nil
}

func (cfg *Config) applyProperty(key string, value string) error {
	switch key {
	case PropBufferSize:
		size, err := datasize.ParseString(value)
		if err != nil {
			return err
		}
		cfg.BufferSize = Size(size)
	case PropMultibyte:
		flag, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.Multibyte = flag
	case PropLogLevel:
		level, err := base.ParseLevel(value)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	case PropTimeZoneID:
		cfg.TimeZoneID = value
	case PropLanguage:
		cfg.Language = value
	case PropPattern:
		cfg.Pattern = value
	case PropImmediateFlush:
		flag, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.ImmediateFlush = flag
	case PropBufferedIOThreshold:
		threshold, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.BufferedIOThreshold = threshold
	case PropAwaitTimeout:
		timeout, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.AwaitTimeoutMillis = timeout
	default:
		return fmt.Errorf("unrecognized key")
	}
	return nil
}
