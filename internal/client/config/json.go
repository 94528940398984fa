package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the client configuration. Durations are
// either strings like "12s" or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr       string         `json:"server_endpoint_addr"`
	RequestTimeout           timex.Duration `json:"request_timeout"`
	PhoneVerificationTimeout timex.Duration `json:"phone_verification_timeout"`
	OnlineCheckInterval      timex.Duration `json:"online_check_interval"`
	LogLevel                 string         `json:"log_level"`
}

// parseJson overlays Config with the file named by -c/-config. Fields missing
// from the file keep their current values. Panics on unreadable or malformed
// files.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.PhoneVerificationTimeout.Duration > 0 {
		cfg.PhoneVerificationTimeout = jc.PhoneVerificationTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
