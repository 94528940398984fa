package providers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

const (
	jwksMaxAge = time.Hour
	// jwksMinRefresh bounds refetches triggered by unknown key ids.
	jwksMinRefresh = time.Minute
)

var googleIssuers = map[string]bool{
	"https://accounts.google.com": true,
	"accounts.google.com":         true,
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// Google verifies RS256 ID tokens against Google's published JWKS.
type Google struct {
	clientID string
	jwksURL  string
	http     *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	group     singleflight.Group

	now func() time.Time
}

func NewGoogle(clientID, jwksURL string) *Google {
	return &Google{clientID: clientID, jwksURL: jwksURL, http: newHTTPClient(), now: time.Now}
}

func (g *Google) Verify(ctx context.Context, idToken, _ string) (*Identity, error) {
	var keyErr error
	tok, err := jwtv5.Parse(idToken, func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, err := g.keyFor(ctx, kid)
		if err != nil {
			keyErr = err
			return nil, err
		}
		return key, nil
	},
		jwtv5.WithValidMethods([]string{"RS256"}),
		jwtv5.WithAudience(g.clientID),
		jwtv5.WithLeeway(30*time.Second),
		jwtv5.WithExpirationRequired(),
	)
	if keyErr != nil {
		return nil, keyErr
	}
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("google: %v: %w", err, common.ErrInvalidCredential)
	}

	claims, _ := tok.Claims.(jwtv5.MapClaims)
	iss, _ := claims.GetIssuer()
	if !googleIssuers[iss] {
		return nil, fmt.Errorf("google: bad iss %q: %w", iss, common.ErrInvalidCredential)
	}
	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, fmt.Errorf("google: missing sub: %w", common.ErrInvalidCredential)
	}

	return &Identity{
		Provider:      "google",
		Subject:       sub,
		Email:         strClaim(claims, "email"),
		EmailVerified: boolClaim(claims, "email_verified"),
	}, nil
}

func (g *Google) keyFor(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	g.mu.RLock()
	key, ok := g.keys[kid]
	loaded := g.keys != nil
	age := g.now().Sub(g.fetchedAt)
	g.mu.RUnlock()
	if ok && age < jwksMaxAge {
		return key, nil
	}
	// An unknown kid may follow a key rotation, but anyone can send one.
	if !ok && loaded && age < jwksMinRefresh {
		return nil, fmt.Errorf("google: unknown kid %q: %w", kid, common.ErrInvalidCredential)
	}

	// concurrent misses share one fetch
	_, err, _ := g.group.Do("jwks", func() (any, error) {
		return nil, g.refresh(ctx)
	})
	if err != nil {
		return nil, unavailable("google", err)
	}

	g.mu.RLock()
	key, ok = g.keys[kid]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("google: unknown kid %q: %w", kid, common.ErrInvalidCredential)
	}
	return key, nil
}

func (g *Google) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.jwksURL, nil)
	if err != nil {
		return err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("jwks http %d", resp.StatusCode)
	}
	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return err
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if !strings.EqualFold(k.Kty, "RSA") {
			continue
		}
		pub, err := rsaKey(k)
		if err != nil {
			return err
		}
		keys[k.Kid] = pub
	}

	g.mu.Lock()
	g.keys = keys
	g.fetchedAt = g.now()
	g.mu.Unlock()
	return nil
}

func rsaKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	if len(nb) == 0 {
		return nil, errors.New("empty modulus")
	}
	e := 65537
	if len(eb) > 0 {
		e = int(new(big.Int).SetBytes(eb).Int64())
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}

func strClaim(m jwtv5.MapClaims, k string) string {
	s, _ := m[k].(string)
	return s
}

func boolClaim(m jwtv5.MapClaims, k string) bool {
	switch v := m[k].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
