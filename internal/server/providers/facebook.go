package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Facebook resolves user access tokens through the Graph API /me endpoint.
// Requests carry appsecret_proof so tokens minted for other apps fail.
type Facebook struct {
	appSecret string
	graphURL  string
	http      *http.Client
}

func NewFacebook(appSecret, graphURL string) *Facebook {
	return &Facebook{appSecret: appSecret, graphURL: strings.TrimRight(graphURL, "/"), http: newHTTPClient()}
}

type graphMe struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (f *Facebook) Verify(ctx context.Context, accessToken, _ string) (*Identity, error) {
	q := url.Values{}
	q.Set("fields", "id,email")
	q.Set("access_token", accessToken)
	q.Set("appsecret_proof", f.proof(accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.graphURL+"/me?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, unavailable("facebook", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus("facebook", resp.StatusCode); err != nil {
		return nil, err
	}

	var me graphMe
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, unavailable("facebook", err)
	}
	if me.ID == "" {
		return nil, fmt.Errorf("facebook: empty id: %w", common.ErrInvalidCredential)
	}

	// Graph only returns confirmed addresses.
	return &Identity{Provider: "facebook", Subject: me.ID, Email: me.Email, EmailVerified: me.Email != ""}, nil
}

func (f *Facebook) proof(token string) string {
	mac := hmac.New(sha256.New, []byte(f.appSecret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
