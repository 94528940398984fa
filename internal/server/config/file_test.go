package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })

	dir := t.TempDir()

	jsonBody := `{
		"endpoint_addr_http": ":9999",
		"access_token_validity_duration": "2h",
		"disabled_providers": ["facebook"],
		"phone": {"code_ttl": "90s", "test_numbers": {"+15555550100": "654321"}},
		"google": {"client_id": "cid"}
	}`
	yamlBody := "endpoint_addr_http: \":9999\"\naccess_token_validity_duration: 2h\ndisabled_providers: [facebook]\nphone:\n  code_ttl: 90s\n  test_numbers:\n    \"+15555550100\": \"654321\"\ngoogle:\n  client_id: cid\n"

	tests := []struct {
		name, file, body string
	}{
		{"json", "conf.json", jsonBody},
		{"yaml", "conf.yaml", yamlBody},
		{"yml", "conf.yml", yamlBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := dir + "/" + tt.file
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))
			os.Args = []string{"cmd", "-c", path}

			var c Config
			c.LoadDefaults()
			require.NotPanics(t, func() { parseFile(&c) })

			assert.Equal(t, ":9999", c.EndpointAddrHTTP)
			assert.Equal(t, ":50051", c.EndpointAddrGRPC)
			assert.Equal(t, 2*time.Hour, c.AccessTokenValidityDuration)
			assert.Equal(t, []string{"facebook"}, c.DisabledProviders)
			assert.Equal(t, 90*time.Second, c.Phone.CodeTTL)
			assert.Equal(t, 5, c.Phone.MaxAttempts)
			assert.Equal(t, "654321", c.Phone.TestNumbers["+15555550100"])
			assert.Equal(t, "cid", c.Google.ClientID)
		})
	}
}

func TestParseFile_Errors(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })

	dir := t.TempDir()
	bad := dir + "/bad.json"
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))

	for _, args := range [][]string{
		{"cmd", "-c", dir + "/missing.json"},
		{"cmd", "-config", bad},
	} {
		os.Args = args
		var c Config
		require.Panics(t, func() { parseFile(&c) })
	}
}

func TestParseFile_NoFlag(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd"}

	var c Config
	c.LoadDefaults()
	parseFile(&c)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
}
