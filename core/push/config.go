package push

// Config holds configuration for the push transport.
type Config struct {
	// URL is the websocket endpoint. Empty disables the transport; the
	// engine falls back to fetch/poll only.
	URL string `mapstructure:"url" default:""`
	// Token is the bearer credential presented during the handshake.
	Token string `mapstructure:"token" default:""`
}
