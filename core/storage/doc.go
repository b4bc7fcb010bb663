// Package storage provides the object storage client used for snapshot
// archives.
//
// It wraps the MinIO SDK behind a narrow Client interface so the archiver
// can be tested against a mock. Credentials, endpoint, and bucket come from
// the storage section of the application configuration.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err != nil {
//	    logg.Fatal("Failed to create storage client", zap.Error(err))
//	}
package storage
