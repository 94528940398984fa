package config

import "time"

// Config holds runtime settings for the gophauth CLI.
type Config struct {
	// ServerEndpointAddr is host:port of the identity backend.
	ServerEndpointAddr string
	// RequestTimeout bounds backend calls that have no deadline of their own.
	RequestTimeout time.Duration
	// PhoneVerificationTimeout is granted to the backend for SMS dispatch.
	PhoneVerificationTimeout time.Duration
	// OnlineCheckInterval is how often the CLI probes server reachability.
	OnlineCheckInterval time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 12 * time.Second
	c.PhoneVerificationTimeout = 60 * time.Second
	c.OnlineCheckInterval = 10 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, then the JSON file, then flags. Later sources
// take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
