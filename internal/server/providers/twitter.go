package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Twitter checks an OAuth1 token/secret pair with account/verify_credentials.
type Twitter struct {
	config *oauth1.Config
	apiURL string
	base   *http.Client
}

func NewTwitter(consumerKey, consumerSecret, apiURL string) *Twitter {
	return &Twitter{
		config: oauth1.NewConfig(consumerKey, consumerSecret),
		apiURL: strings.TrimRight(apiURL, "/"),
		base:   newHTTPClient(),
	}
}

type twitterUser struct {
	IDStr string `json:"id_str"`
	Email string `json:"email"`
}

func (t *Twitter) Verify(ctx context.Context, token, secret string) (*Identity, error) {
	if secret == "" {
		return nil, fmt.Errorf("twitter: missing token secret: %w", common.ErrInvalidCredential)
	}

	ctx = context.WithValue(ctx, oauth1.HTTPClient, t.base)
	client := t.config.Client(ctx, oauth1.NewToken(token, secret))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.apiURL+"/account/verify_credentials.json?include_email=true&skip_status=true", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, unavailable("twitter", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus("twitter", resp.StatusCode); err != nil {
		return nil, err
	}

	var u twitterUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, unavailable("twitter", err)
	}
	if u.IDStr == "" {
		return nil, fmt.Errorf("twitter: empty id: %w", common.ErrInvalidCredential)
	}

	return &Identity{Provider: "twitter", Subject: u.IDStr, Email: u.Email, EmailVerified: u.Email != ""}, nil
}
