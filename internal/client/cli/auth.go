package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/credentials"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// promptPassword asks for the email (unless given) and the password and
// builds a password credential.
func (a *App) promptPassword(email string) (*credentials.Credential, error) {
	if email == "" {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return nil, err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	return credentials.Password(email, string(password))
}

func (a *App) SignInPassword(ctx context.Context, email string) error {
	cred, err := a.promptPassword(email)
	if err != nil {
		return err
	}
	_, err = a.session.SignIn(ctx, cred)
	return err
}

func (a *App) CreateAccount(ctx context.Context, email string) error {
	cred, err := a.promptPassword(email)
	if err != nil {
		return err
	}
	_, err = a.session.CreateAccount(ctx, cred)
	return err
}

func (a *App) SignInWithToken(ctx context.Context, kind models.ProviderKind, token string) error {
	var (
		cred *credentials.Credential
		err  error
	)
	switch kind {
	case models.ProviderGoogle:
		cred, err = credentials.FromIDToken(token)
	case models.ProviderFacebook:
		cred, err = credentials.FromAccessToken(token)
	case models.ProviderFirebase:
		cred, err = credentials.FromFirebaseIDToken(token)
	default:
		return fmt.Errorf("%w: %s is not a token provider", common.ErrValidation, kind)
	}
	if err != nil {
		return err
	}
	_, err = a.session.SignIn(ctx, cred)
	return err
}

func (a *App) SignInTwitter(ctx context.Context, token, secret string) error {
	cred, err := credentials.FromOAuthPair(token, secret)
	if err != nil {
		return err
	}
	_, err = a.session.SignIn(ctx, cred)
	return err
}

func (a *App) VerifyEmail(ctx context.Context) error {
	if err := a.session.SendEmailVerification(ctx); err != nil {
		return err
	}
	if s := a.session.CurrentSession(); s != nil {
		fmt.Fprintln(a.out, "Verification email sent to", s.Email)
	}
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s := a.session.CurrentSession()
	if s == nil {
		return common.ErrNoActiveSession
	}
	fmt.Fprintf(a.out, "uid:            %s\n", s.ID)
	fmt.Fprintf(a.out, "provider:       %s\n", s.Provider)
	if s.Email != "" {
		fmt.Fprintf(a.out, "email:          %s\n", s.Email)
		fmt.Fprintf(a.out, "email verified: %t\n", s.EmailVerified)
	}
	if s.PhoneNumber != "" {
		fmt.Fprintf(a.out, "phone:          %s\n", s.PhoneNumber)
	}
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	a.session.SignOut()
	return nil
}

func (a *App) Disconnect(ctx context.Context) error {
	return a.session.Disconnect(ctx)
}
