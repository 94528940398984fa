// Package config handles configuration for the identity server: defaults,
// a JSON or YAML file, dotenv and GOPHAUTH_* environment variables, and
// command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the gophauth server.
//
// An empty DatabaseDSN selects in-memory repositories and an empty RedisAddr
// selects the in-process cache and rate limiter, which is what tests and
// local runs use.
type Config struct {
	EndpointAddrGRPC string
	EndpointAddrHTTP string
	// PublicBaseURL prefixes links sent by email, e.g. the verification link.
	PublicBaseURL string
	DatabaseDSN   string
	RedisAddr     string
	// SecretKey signs session tokens (HS256). Do not use the default in prod.
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	LogFormat                   string
	LogLevel                    string
	// DisabledProviders lists provider names rejected with ProviderDisabled.
	DisabledProviders []string

	Phone    PhoneConfig
	Email    EmailConfig
	Google   GoogleConfig
	Facebook FacebookConfig
	Twitter  TwitterConfig
	Firebase FirebaseConfig
}

type PhoneConfig struct {
	CodeLength     int
	CodeTTL        time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
	// QuotaPerHour caps codes sent to one number per hour.
	QuotaPerHour int
	// TestNumbers maps phone numbers to fixed codes. Requests for these
	// numbers are auto-verified and no SMS is sent.
	TestNumbers map[string]string
}

type EmailConfig struct {
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	From            string
	VerificationTTL time.Duration
}

type GoogleConfig struct {
	ClientID string
	JWKSURL  string
}

type FacebookConfig struct {
	AppID     string
	AppSecret string
	GraphURL  string
}

type TwitterConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	APIURL         string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.PublicBaseURL = "http://127.0.0.1:8080"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 60 * time.Minute
	c.LogFormat = "json"
	c.LogLevel = "info"

	c.Phone = PhoneConfig{
		CodeLength:     6,
		CodeTTL:        5 * time.Minute,
		ResendCooldown: 30 * time.Second,
		MaxAttempts:    5,
		QuotaPerHour:   5,
		TestNumbers:    map[string]string{},
	}
	c.Email = EmailConfig{
		SMTPPort:        587,
		From:            "no-reply@gophauth.local",
		VerificationTTL: 24 * time.Hour,
	}
	c.Google.JWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	c.Facebook.GraphURL = "https://graph.facebook.com"
	c.Twitter.APIURL = "https://api.twitter.com/1.1"
}

// ProviderEnabled reports whether sign-ins with provider are accepted.
func (c *Config) ProviderEnabled(provider string) bool {
	for _, p := range c.DisabledProviders {
		if p == provider {
			return false
		}
	}
	return true
}

// LoadConfig builds a Config from defaults, the optional file named by
// -c/-config, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
