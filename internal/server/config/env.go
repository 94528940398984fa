package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "GOPHAUTH_"

// parseEnv loads the dotenv file named by -env-file (or ./.env when present)
// and overlays cfg with GOPHAUTH_* variables. Variables already set in the
// process environment take precedence over the dotenv file.
func parseEnv(cfg *Config) {
	loadDotenv(flagx.EnvFileFlag())

	cfg.EndpointAddrGRPC = getEnvStr("GRPC_ADDR", cfg.EndpointAddrGRPC)
	cfg.EndpointAddrHTTP = getEnvStr("HTTP_ADDR", cfg.EndpointAddrHTTP)
	cfg.PublicBaseURL = getEnvStr("PUBLIC_BASE_URL", cfg.PublicBaseURL)
	cfg.DatabaseDSN = getEnvStr("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.RedisAddr = getEnvStr("REDIS_ADDR", cfg.RedisAddr)
	cfg.SecretKey = getEnvStr("SECRET_KEY", cfg.SecretKey)
	cfg.AccessTokenValidityDuration = getEnvDur("ACCESS_TOKEN_TTL", cfg.AccessTokenValidityDuration)
	cfg.LogFormat = getEnvStr("LOG_FORMAT", cfg.LogFormat)
	cfg.LogLevel = getEnvStr("LOG_LEVEL", cfg.LogLevel)
	cfg.DisabledProviders = getEnvCSV("DISABLED_PROVIDERS", cfg.DisabledProviders)

	cfg.Phone.CodeLength = getEnvInt("PHONE_CODE_LENGTH", cfg.Phone.CodeLength)
	cfg.Phone.CodeTTL = getEnvDur("PHONE_CODE_TTL", cfg.Phone.CodeTTL)
	cfg.Phone.ResendCooldown = getEnvDur("PHONE_RESEND_COOLDOWN", cfg.Phone.ResendCooldown)
	cfg.Phone.MaxAttempts = getEnvInt("PHONE_MAX_ATTEMPTS", cfg.Phone.MaxAttempts)
	cfg.Phone.QuotaPerHour = getEnvInt("PHONE_QUOTA_PER_HOUR", cfg.Phone.QuotaPerHour)
	if v, ok := lookup("PHONE_TEST_NUMBERS"); ok {
		cfg.Phone.TestNumbers = parseKVList(v)
	}

	cfg.Email.SMTPHost = getEnvStr("SMTP_HOST", cfg.Email.SMTPHost)
	cfg.Email.SMTPPort = getEnvInt("SMTP_PORT", cfg.Email.SMTPPort)
	cfg.Email.SMTPUser = getEnvStr("SMTP_USER", cfg.Email.SMTPUser)
	cfg.Email.SMTPPassword = getEnvStr("SMTP_PASSWORD", cfg.Email.SMTPPassword)
	cfg.Email.From = getEnvStr("SMTP_FROM", cfg.Email.From)
	cfg.Email.VerificationTTL = getEnvDur("EMAIL_VERIFICATION_TTL", cfg.Email.VerificationTTL)

	cfg.Google.ClientID = getEnvStr("GOOGLE_CLIENT_ID", cfg.Google.ClientID)
	cfg.Google.JWKSURL = getEnvStr("GOOGLE_JWKS_URL", cfg.Google.JWKSURL)
	cfg.Facebook.AppID = getEnvStr("FACEBOOK_APP_ID", cfg.Facebook.AppID)
	cfg.Facebook.AppSecret = getEnvStr("FACEBOOK_APP_SECRET", cfg.Facebook.AppSecret)
	cfg.Facebook.GraphURL = getEnvStr("FACEBOOK_GRAPH_URL", cfg.Facebook.GraphURL)
	cfg.Twitter.ConsumerKey = getEnvStr("TWITTER_CONSUMER_KEY", cfg.Twitter.ConsumerKey)
	cfg.Twitter.ConsumerSecret = getEnvStr("TWITTER_CONSUMER_SECRET", cfg.Twitter.ConsumerSecret)
	cfg.Twitter.APIURL = getEnvStr("TWITTER_API_URL", cfg.Twitter.APIURL)
	cfg.Firebase.ProjectID = getEnvStr("FIREBASE_PROJECT_ID", cfg.Firebase.ProjectID)
	cfg.Firebase.CredentialsFile = getEnvStr("FIREBASE_CREDENTIALS_FILE", cfg.Firebase.CredentialsFile)
}

// loadDotenv panics when an explicitly named file cannot be loaded. A
// missing default .env is not an error.
func loadDotenv(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func getEnvStr(key, def string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	return n
}

func getEnvDur(key string, def time.Duration) time.Duration {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	return d
}

func getEnvCSV(key string, def []string) []string {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseKVList parses "k1=v1,k2=v2". Malformed pairs are skipped.
func parseKVList(s string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
