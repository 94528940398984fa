package providers

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/api/option"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Firebase verifies Firebase Auth ID tokens with the Admin SDK.
type Firebase struct {
	verifier idTokenVerifier
}

// NewFirebase initializes the Admin SDK for projectID. An empty
// credentialsFile falls back to application default credentials.
func NewFirebase(ctx context.Context, projectID, credentialsFile string) (*Firebase, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &Firebase{verifier: client}, nil
}

func (f *Firebase) Verify(ctx context.Context, idToken, _ string) (*Identity, error) {
	tok, err := f.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		if auth.IsIDTokenInvalid(err) {
			return nil, fmt.Errorf("firebase: %v: %w", err, common.ErrInvalidCredential)
		}
		return nil, unavailable("firebase", err)
	}

	id := &Identity{Provider: "firebase", Subject: tok.UID}
	if v, ok := tok.Claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := tok.Claims["email_verified"].(bool); ok {
		id.EmailVerified = v
	}
	if v, ok := tok.Claims["phone_number"].(string); ok {
		id.PhoneNumber = v
	}
	return id, nil
}
