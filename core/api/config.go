package api

// Config holds configuration for the dashboard REST API client.
type Config struct {
	// BaseURL is the root of the dashboard API.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:3000/api"`
	// Token is the bearer credential supplied by the auth collaborator.
	Token string `mapstructure:"token" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
}
