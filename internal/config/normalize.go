package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeMerge()
	c.normalizeOutput()
	if err := c.normalizeExport(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeMerge() {
	c.Merge.Name = strings.TrimSpace(c.Merge.Name)
	if c.Merge.Name == "" {
		c.Merge.Name = defaultMergeName
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	c.Output.Timestamps = strings.ToLower(strings.TrimSpace(c.Output.Timestamps))
	if c.Output.Timestamps == "" {
		c.Output.Timestamps = defaultOutputTimestamps
	}
}

func (c *Config) normalizeExport() error {
	if value, ok := os.LookupEnv("GOVYU_EXPORT_DB"); ok && strings.TrimSpace(value) != "" {
		c.Export.DBPath = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Export.DBPath) == "" {
		c.Export.DBPath = defaultExportDB()
	}
	var err error
	if c.Export.DBPath, err = expandPath(c.Export.DBPath); err != nil {
		return fmt.Errorf("export.db_path: %w", err)
	}
	c.Export.Table = strings.TrimSpace(c.Export.Table)
	if c.Export.Table == "" {
		c.Export.Table = defaultExportTable
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	if value, ok := os.LookupEnv("GOVYU_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		var err error
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	if len(c.Logging.ComponentLevels) > 0 {
		levels := make(map[string]string, len(c.Logging.ComponentLevels))
		for component, level := range c.Logging.ComponentLevels {
			component = strings.TrimSpace(component)
			if component == "" {
				continue
			}
			levels[component] = strings.ToLower(strings.TrimSpace(level))
		}
		c.Logging.ComponentLevels = levels
	}
	return nil
}
