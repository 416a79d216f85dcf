package api

// Config holds the HTTP API configuration.
type Config struct {
	APIKey          string `env:"API_KEY" envDefault:"dev-key"`
	MaxRequestBytes int64  `env:"MAX_REQUEST_BYTES" envDefault:"1048576"`
}
