package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Merge contains defaults for the interval merge.
type Merge struct {
	// Prune drops merged intervals where no source column is active.
	Prune bool `toml:"prune"`
	// Name is the column name used when a merge is saved without --name.
	Name string `toml:"name"`
}

// Output controls how commands render tables.
type Output struct {
	Format     string `toml:"format"`     // table, json, or csv
	Timestamps string `toml:"timestamps"` // text or millis
}

// Archive controls how .opf files are rewritten.
type Archive struct {
	Backup             bool `toml:"backup"`
	LockTimeoutSeconds int  `toml:"lock_timeout_seconds"`
}

// Export contains the SQLite export target.
type Export struct {
	DBPath string `toml:"db_path"`
	Table  string `toml:"table"`
}

// Watch tunes the file watcher.
type Watch struct {
	DebounceMillis int `toml:"debounce_millis"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format          string            `toml:"format"`
	Level           string            `toml:"level"`
	Dir             string            `toml:"dir"`
	ComponentLevels map[string]string `toml:"component_levels"`
}

// Config encapsulates all configuration values for govyu.
//
// Configuration sections by subsystem:
//   - Merge: pruning default and saved column name
//   - Output: table/json/csv rendering and timestamp style
//   - Archive: backup and lock behaviour when rewriting .opf files
//   - Export: SQLite database and table for merged tables
//   - Watch: debounce window for the watch command
//   - Logging: log format, level, optional file directory, per-component levels
type Config struct {
	Merge   Merge   `toml:"merge"`
	Output  Output  `toml:"output"`
	Archive Archive `toml:"archive"`
	Export  Export  `toml:"export"`
	Watch   Watch   `toml:"watch"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// decodeFile reads TOML from path into cfg. Unknown keys are an error so a
// misspelled option is not silently ignored.
func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath returns the file Load should read and whether it exists.
// An explicit path wins even when missing. Otherwise the user config is
// preferred over ./govyu.toml, and the user config path is returned when
// neither exists.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// EnsureDirectories creates the export database directory and, when file
// logging is enabled, the log directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Export.DBPath)}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockTimeout returns the archive lock wait as a duration. Zero means fail
// immediately when another writer holds the lock.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Archive.LockTimeoutSeconds) * time.Second
}

// WatchDebounce returns the watch debounce window.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMillis) * time.Millisecond
}

// MillisTimestamps reports whether tables render onset/offset as millisecond counts.
func (c *Config) MillisTimestamps() bool {
	return c.Output.Timestamps == TimestampsMillis
}

// expandPath resolves a leading "~" or "~/" against the home directory and
// returns the cleaned absolute path. "~user" forms are left alone.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path rules to a command-line path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultExportDB() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "govyu", "export.db")
	}
	return defaultExportDBPath
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
