package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-w", ":8081", "-d", "db", "-r", "localhost:6379",
			"-s", "secret", "-t", "15", "-l", "debug", "-f", "text",
		}, expected: &Config{
			EndpointAddrGRPC:            "127.0.0.1:9090",
			EndpointAddrHTTP:            ":8081",
			DatabaseDSN:                 "db",
			RedisAddr:                   "localhost:6379",
			SecretKey:                   "secret",
			AccessTokenValidityDuration: 15 * time.Minute,
			LogLevel:                    "debug",
			LogFormat:                   "text",
		}},
		{name: "foreign flags ignored", args: []string{"cmd", "-x", "1", "-a", ":1"},
			expected: &Config{EndpointAddrGRPC: ":1"}},
		{name: "bad minutes", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
