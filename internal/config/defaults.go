package config

const (
	defaultConfigPath       = "~/.config/govyu/config.toml"
	projectConfigName       = "govyu.toml"
	defaultExportDBPath     = "~/.local/share/govyu/export.db"
	defaultExportTable      = "merged"
	defaultMergeName        = "merged"
	defaultLockTimeout      = 5
	defaultWatchDebounce    = 250
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultOutputFormat     = FormatTable
	defaultOutputTimestamps = TimestampsText
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// Timestamp styles.
const (
	TimestampsText   = "text"
	TimestampsMillis = "millis"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Merge: Merge{
			Prune: true,
			Name:  defaultMergeName,
		},
		Output: Output{
			Format:     defaultOutputFormat,
			Timestamps: defaultOutputTimestamps,
		},
		Archive: Archive{
			LockTimeoutSeconds: defaultLockTimeout,
		},
		Export: Export{
			DBPath: defaultExportDB(),
			Table:  defaultExportTable,
		},
		Watch: Watch{
			DebounceMillis: defaultWatchDebounce,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
