package config

import (
	"errors"
	"fmt"

	"govyu/internal/sheet"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case FormatTable, FormatJSON, FormatCSV:
	default:
		return fmt.Errorf("output.format must be one of table, json, csv (got %q)", c.Output.Format)
	}
	switch c.Output.Timestamps {
	case TimestampsText, TimestampsMillis:
	default:
		return fmt.Errorf("output.timestamps must be text or millis (got %q)", c.Output.Timestamps)
	}
	return nil
}

func (c *Config) validateMerge() error {
	if !sheet.ValidName(c.Merge.Name) {
		return fmt.Errorf("merge.name may only hold letters, digits and underscores (got %q)", c.Merge.Name)
	}
	return nil
}

func (c *Config) validateArchive() error {
	if c.Archive.LockTimeoutSeconds < 0 {
		return errors.New("archive.lock_timeout_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.DebounceMillis < 0 {
		return errors.New("watch.debounce_millis must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	if !validLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	for component, level := range c.Logging.ComponentLevels {
		if !validLevel(level) {
			return fmt.Errorf("logging.component_levels.%s: unsupported level %q", component, level)
		}
	}
	return nil
}

func validLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}
