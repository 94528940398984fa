package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of Config. The same keys are used for JSON
// and YAML; durations accept "90s" style strings or integer nanoseconds.
type FileConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	PublicBaseURL               string         `json:"public_base_url" yaml:"public_base_url"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	RedisAddr                   string         `json:"redis_addr" yaml:"redis_addr"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	LogFormat                   string         `json:"log_format" yaml:"log_format"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
	DisabledProviders           []string       `json:"disabled_providers" yaml:"disabled_providers"`

	Phone struct {
		CodeLength     int               `json:"code_length" yaml:"code_length"`
		CodeTTL        timex.Duration    `json:"code_ttl" yaml:"code_ttl"`
		ResendCooldown timex.Duration    `json:"resend_cooldown" yaml:"resend_cooldown"`
		MaxAttempts    int               `json:"max_attempts" yaml:"max_attempts"`
		QuotaPerHour   int               `json:"quota_per_hour" yaml:"quota_per_hour"`
		TestNumbers    map[string]string `json:"test_numbers" yaml:"test_numbers"`
	} `json:"phone" yaml:"phone"`

	Email struct {
		SMTPHost        string         `json:"smtp_host" yaml:"smtp_host"`
		SMTPPort        int            `json:"smtp_port" yaml:"smtp_port"`
		SMTPUser        string         `json:"smtp_user" yaml:"smtp_user"`
		SMTPPassword    string         `json:"smtp_password" yaml:"smtp_password"`
		From            string         `json:"from" yaml:"from"`
		VerificationTTL timex.Duration `json:"verification_ttl" yaml:"verification_ttl"`
	} `json:"email" yaml:"email"`

	Google struct {
		ClientID string `json:"client_id" yaml:"client_id"`
		JWKSURL  string `json:"jwks_url" yaml:"jwks_url"`
	} `json:"google" yaml:"google"`

	Facebook struct {
		AppID     string `json:"app_id" yaml:"app_id"`
		AppSecret string `json:"app_secret" yaml:"app_secret"`
		GraphURL  string `json:"graph_url" yaml:"graph_url"`
	} `json:"facebook" yaml:"facebook"`

	Twitter struct {
		ConsumerKey    string `json:"consumer_key" yaml:"consumer_key"`
		ConsumerSecret string `json:"consumer_secret" yaml:"consumer_secret"`
		APIURL         string `json:"api_url" yaml:"api_url"`
	} `json:"twitter" yaml:"twitter"`

	Firebase struct {
		ProjectID       string `json:"project_id" yaml:"project_id"`
		CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	} `json:"firebase" yaml:"firebase"`
}

// parseFile overlays cfg with the file named by -c/-config. Files ending in
// .yml or .yaml are read as YAML, anything else as JSON. Keys absent from the
// file keep their current value. Panics on unreadable or malformed files.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&cfg.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&cfg.PublicBaseURL, fc.PublicBaseURL)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.SecretKey, fc.SecretKey)
	setDuration(&cfg.AccessTokenValidityDuration, fc.AccessTokenValidityDuration)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.DisabledProviders != nil {
		cfg.DisabledProviders = fc.DisabledProviders
	}

	setInt(&cfg.Phone.CodeLength, fc.Phone.CodeLength)
	setDuration(&cfg.Phone.CodeTTL, fc.Phone.CodeTTL)
	setDuration(&cfg.Phone.ResendCooldown, fc.Phone.ResendCooldown)
	setInt(&cfg.Phone.MaxAttempts, fc.Phone.MaxAttempts)
	setInt(&cfg.Phone.QuotaPerHour, fc.Phone.QuotaPerHour)
	if fc.Phone.TestNumbers != nil {
		cfg.Phone.TestNumbers = fc.Phone.TestNumbers
	}

	setString(&cfg.Email.SMTPHost, fc.Email.SMTPHost)
	setInt(&cfg.Email.SMTPPort, fc.Email.SMTPPort)
	setString(&cfg.Email.SMTPUser, fc.Email.SMTPUser)
	setString(&cfg.Email.SMTPPassword, fc.Email.SMTPPassword)
	setString(&cfg.Email.From, fc.Email.From)
	setDuration(&cfg.Email.VerificationTTL, fc.Email.VerificationTTL)

	setString(&cfg.Google.ClientID, fc.Google.ClientID)
	setString(&cfg.Google.JWKSURL, fc.Google.JWKSURL)
	setString(&cfg.Facebook.AppID, fc.Facebook.AppID)
	setString(&cfg.Facebook.AppSecret, fc.Facebook.AppSecret)
	setString(&cfg.Facebook.GraphURL, fc.Facebook.GraphURL)
	setString(&cfg.Twitter.ConsumerKey, fc.Twitter.ConsumerKey)
	setString(&cfg.Twitter.ConsumerSecret, fc.Twitter.ConsumerSecret)
	setString(&cfg.Twitter.APIURL, fc.Twitter.APIURL)
	setString(&cfg.Firebase.ProjectID, fc.Firebase.ProjectID)
	setString(&cfg.Firebase.CredentialsFile, fc.Firebase.CredentialsFile)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
