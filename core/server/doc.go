// Package server holds the HTTP server configuration for the local
// inspection API.
//
// While the start command handles the server startup, this package defines
// the configuration structure for server settings: the listen port and the
// optional API key guarding the cache inspection endpoints.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by the auth middleware to read the API key.
package server
