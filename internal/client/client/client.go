package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	SignIn(ctx context.Context, req models.SignInRequest) (*models.Session, error)
	CreateAccount(ctx context.Context, email, password string) (*models.Session, error)
	SendEmailVerification(ctx context.Context, s *models.Session) error
	SendVerificationCode(ctx context.Context, phoneNumber string, timeout time.Duration, resendToken string) (*models.PhoneDispatch, error)
	Unlink(ctx context.Context, s *models.Session) error
}
