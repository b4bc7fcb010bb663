package config

import (
	"reflect"
	"strings"

	"dash-sync/core/api"
	"dash-sync/core/database"
	"dash-sync/core/logger"
	"dash-sync/core/push"
	"dash-sync/core/server"
	"dash-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sync holds the engine-wide synchronization settings.
type Sync struct {
	// Workspace is the tenant scope activated at startup.
	Workspace string `mapstructure:"workspace" default:""`
	// PollSeconds is the poll period for high-churn collections.
	PollSeconds int `mapstructure:"poll_seconds" default:"2"`
	// SlowPollSeconds is the poll period for low-churn collections.
	SlowPollSeconds int `mapstructure:"slow_poll_seconds" default:"30"`
	// ArchiveIntervalMinutes is the period between snapshot uploads to
	// object storage. Zero disables archival.
	ArchiveIntervalMinutes int `mapstructure:"archive_interval_minutes" default:"0"`
}

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the local inspection API.
	Server server.Config `mapstructure:"server"`
	// Api holds configuration for the upstream REST client.
	Api api.Config `mapstructure:"api"`
	// Push holds configuration for the push event channel.
	Push push.Config `mapstructure:"push"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the local snapshot database.
	Database database.Config `mapstructure:"database"`
	// Sync holds the synchronization engine settings.
	Sync Sync `mapstructure:"sync"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
