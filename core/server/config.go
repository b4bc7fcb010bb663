package server

// Config holds configuration for the local inspection API.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"7700"`
	// ApiKey is the secret key required to access the API. Empty disables
	// the check, which is the expected mode for loopback-only use.
	ApiKey string `mapstructure:"api_key" default:""`
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Port
}
