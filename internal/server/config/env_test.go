package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })

	dir := t.TempDir()
	envFile := writeEnvFile(t, dir, "GOPHAUTH_REDIS_ADDR=redis:6379\nGOPHAUTH_SECRET_KEY=dotenv\n")
	os.Args = []string{"cmd", "-env-file", envFile}
	t.Cleanup(func() {
		os.Unsetenv("GOPHAUTH_REDIS_ADDR")
		os.Unsetenv("GOPHAUTH_SECRET_KEY")
	})

	t.Setenv("GOPHAUTH_SECRET_KEY", "process")
	t.Setenv("GOPHAUTH_PHONE_CODE_TTL", "2m")
	t.Setenv("GOPHAUTH_PHONE_MAX_ATTEMPTS", "3")
	t.Setenv("GOPHAUTH_DISABLED_PROVIDERS", "twitter, facebook,")
	t.Setenv("GOPHAUTH_PHONE_TEST_NUMBERS", "+16505551234=123456,bad,+16505550000=")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, "process", c.SecretKey)
	assert.Equal(t, 2*time.Minute, c.Phone.CodeTTL)
	assert.Equal(t, 3, c.Phone.MaxAttempts)
	assert.Equal(t, []string{"twitter", "facebook"}, c.DisabledProviders)
	assert.Equal(t, map[string]string{"+16505551234": "123456"}, c.Phone.TestNumbers)
}

func TestParseEnv_MissingExplicitFilePanics(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-env-file", t.TempDir() + "/nope.env"}

	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}

func TestParseEnv_BadValuesPanic(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd"}

	t.Setenv("GOPHAUTH_SMTP_PORT", "abc")
	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}

func TestGetEnvHelpers_Defaults(t *testing.T) {
	assert.Equal(t, "d", getEnvStr("UNSET_FOR_TEST", "d"))
	assert.Equal(t, 7, getEnvInt("UNSET_FOR_TEST", 7))
	assert.Equal(t, time.Second, getEnvDur("UNSET_FOR_TEST", time.Second))
	assert.Nil(t, getEnvCSV("UNSET_FOR_TEST", nil))
}
