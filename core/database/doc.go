// Package database handles the local snapshot database connection.
//
// It provides a wrapper around GORM to configure the SQLite file that backs
// warm-start snapshots. The connection is optional; every caller is
// expected to degrade gracefully when it is unavailable.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("Snapshot database unavailable", zap.Error(err))
//	}
package database
