package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables authentication.
	ApiKey string `mapstructure:"api_key" default:""`
	// CacheTTLSeconds is how long table reads are memoized. Zero only coalesces concurrent reads.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"0"`
}

// Address returns the listen address for Port.
func (c Config) Address() string {
	return ":" + c.Port
}
