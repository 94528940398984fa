package providers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jwksServer struct {
	*httptest.Server
	key  *rsa.PrivateKey
	hits atomic.Int32
}

func newJWKSServer(t *testing.T) *jwksServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	s := &jwksServer{key: key}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		_ = json.NewEncoder(w).Encode(jwks{Keys: []jwk{{
			Kty: "RSA",
			Kid: "k1",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) sign(t *testing.T, kid string, claims jwtv5.MapClaims) string {
	t.Helper()
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	out, err := tok.SignedString(s.key)
	require.NoError(t, err)
	return out
}

func validClaims() jwtv5.MapClaims {
	return jwtv5.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            "client-1",
		"sub":            "g-123",
		"email":          "alice@example.com",
		"email_verified": true,
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
}

func TestGoogle_Verify(t *testing.T) {
	srv := newJWKSServer(t)
	g := NewGoogle("client-1", srv.URL)

	id, err := g.Verify(context.Background(), srv.sign(t, "k1", validClaims()), "")
	require.NoError(t, err)
	assert.Equal(t, &Identity{Provider: "google", Subject: "g-123", Email: "alice@example.com", EmailVerified: true}, id)

	_, err = g.Verify(context.Background(), srv.sign(t, "k1", validClaims()), "")
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.hits.Load(), "keys are cached")
}

func TestGoogle_Rejects(t *testing.T) {
	srv := newJWKSServer(t)
	g := NewGoogle("client-1", srv.URL)

	mutate := func(f func(jwtv5.MapClaims)) jwtv5.MapClaims {
		c := validClaims()
		f(c)
		return c
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"wrong audience", srv.sign(t, "k1", mutate(func(c jwtv5.MapClaims) { c["aud"] = "other" }))},
		{"wrong issuer", srv.sign(t, "k1", mutate(func(c jwtv5.MapClaims) { c["iss"] = "https://evil" }))},
		{"expired", srv.sign(t, "k1", mutate(func(c jwtv5.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }))},
		{"no exp", srv.sign(t, "k1", mutate(func(c jwtv5.MapClaims) { delete(c, "exp") }))},
		{"no sub", srv.sign(t, "k1", mutate(func(c jwtv5.MapClaims) { delete(c, "sub") }))},
		{"unknown kid", srv.sign(t, "k2", validClaims())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Verify(context.Background(), tt.token, "")
			assert.ErrorIs(t, err, common.ErrInvalidCredential)
		})
	}
}

func TestGoogle_UnknownKidRefetchIsThrottled(t *testing.T) {
	srv := newJWKSServer(t)
	g := NewGoogle("client-1", srv.URL)
	clock := time.Now()
	g.now = func() time.Time { return clock }
	ctx := context.Background()

	_, err := g.Verify(ctx, srv.sign(t, "k1", validClaims()), "")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err = g.Verify(ctx, srv.sign(t, "rotated", validClaims()), "")
		require.ErrorIs(t, err, common.ErrInvalidCredential)
	}
	assert.Equal(t, int32(1), srv.hits.Load())

	clock = clock.Add(jwksMinRefresh)
	_, err = g.Verify(ctx, srv.sign(t, "rotated", validClaims()), "")
	require.ErrorIs(t, err, common.ErrInvalidCredential)
	assert.Equal(t, int32(2), srv.hits.Load())

	_, err = g.Verify(ctx, srv.sign(t, "k1", validClaims()), "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestGoogle_JWKSUnavailable(t *testing.T) {
	srv := newJWKSServer(t)
	token := srv.sign(t, "k1", validClaims())

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	g := NewGoogle("client-1", down.URL)
	_, err := g.Verify(context.Background(), token, "")
	assert.ErrorIs(t, err, common.ErrProviderUnavailable)
}

func TestBoolClaim(t *testing.T) {
	m := jwtv5.MapClaims{"a": true, "b": "true", "c": "yes"}
	assert.True(t, boolClaim(m, "a"))
	assert.True(t, boolClaim(m, "b"))
	assert.False(t, boolClaim(m, "c"))
	assert.False(t, boolClaim(m, "missing"))
}
