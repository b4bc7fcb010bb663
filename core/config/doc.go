// Package config provides configuration management for the sync engine.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: local inspection API settings (port, API key)
//   - Api: upstream REST endpoint and bearer token
//   - Push: push channel URL and token
//   - Database: SQLite snapshot file
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Sync: workspace scope, poll periods, archive interval
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.Workspace)
package config
