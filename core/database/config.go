package database

// Config holds configuration for the local snapshot database.
type Config struct {
	// Path is the SQLite database file. The file is created on first use.
	Path string `mapstructure:"path" default:"dash-sync.db"`
	// TimeoutSeconds bounds the initial connectivity check.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5"`
}
