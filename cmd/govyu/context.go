package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"govyu/internal/config"
	"govyu/internal/logging"
	"govyu/internal/opf"
	"govyu/internal/sheet"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
	format    string
	millis    bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	sessionID  string
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := strings.TrimSpace(c.flags.logFormat); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if format := strings.TrimSpace(c.flags.format); format != "" {
			cfg.Output.Format = strings.ToLower(format)
		}
		if c.flags.millis {
			cfg.Output.Timestamps = config.TimestampsMillis
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

// ensureLogger builds the invocation logger and assigns a fresh session id.
// The returned logger is not stamped; use sessionLogger or pass a context
// from withSession.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.sessionID = uuid.NewString()
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) sessionLogger() (*slog.Logger, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return logging.WithContext(c.withSession(context.Background()), logger), nil
}

// commandLogger returns the session logger tagged with component.
func (c *commandContext) commandLogger(component string) (*slog.Logger, error) {
	logger, err := c.sessionLogger()
	if err != nil {
		return nil, err
	}
	return logging.NewComponentLogger(logger, component), nil
}

// withSession annotates ctx with the session id so code that only receives a
// context can stamp its log lines.
func (c *commandContext) withSession(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithSessionID(ctx, c.sessionID)
}

func (c *commandContext) loadDocument(path string) (*opf.Document, error) {
	logger, err := c.sessionLogger()
	if err != nil {
		return nil, err
	}
	return opf.Load(path, logger)
}

func (c *commandContext) loadSheet(path string) (*sheet.Spreadsheet, error) {
	doc, err := c.loadDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.Sheet, nil
}

func (c *commandContext) timeFormat() sheet.TimeFormat {
	if cfg, err := c.ensureConfig(); err == nil && cfg.MillisTimestamps() {
		return sheet.TimeMillis
	}
	return sheet.TimeText
}

func (c *commandContext) outputFormat() string {
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.Output.Format
	}
	return config.FormatTable
}

func (c *commandContext) saveOptions() (opf.SaveOptions, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return opf.SaveOptions{}, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return opf.SaveOptions{}, err
	}
	return opf.SaveOptions{
		Backup:      cfg.Archive.Backup,
		LockTimeout: cfg.LockTimeout(),
		Logger:      logger,
	}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
