package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusCodes maps outcome sentinels to gRPC codes. The sentinel text travels
// as the status message so clients can recover the exact error.
var statusCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrValidation, codes.InvalidArgument},
	{common.ErrInvalidPhoneNumber, codes.InvalidArgument},
	{common.ErrInvalidCredential, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrAccountCollision, codes.AlreadyExists},
	{common.ErrProviderUnavailable, codes.Unavailable},
	{common.ErrQuotaExceeded, codes.ResourceExhausted},
	{common.ErrProviderDisabled, codes.FailedPrecondition},
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return status.Error(sc.code, sc.err.Error())
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func toAuthResponse(r *services.AuthResult) *pb.AuthResponse {
	return &pb.AuthResponse{
		User: &pb.User{
			Id:            r.User.ID,
			Email:         r.User.Email,
			PhoneNumber:   r.User.PhoneNumber,
			EmailVerified: r.User.EmailVerified,
			Provider:      r.Provider,
		},
		AccessToken: r.AccessToken,
	}
}

func (s *GRPCServer) SignIn(ctx context.Context, req *pb.SignInRequest) (*pb.AuthResponse, error) {

	result, err := s.identity.SignIn(ctx, services.SignInInput{
		Provider:       req.Provider,
		Email:          req.Email,
		Password:       req.Password,
		Token:          req.Token,
		Secret:         req.Secret,
		VerificationID: req.VerificationId,
		Code:           req.Code,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return toAuthResponse(result), nil

}

func (s *GRPCServer) CreateAccount(ctx context.Context, req *pb.CreateAccountRequest) (*pb.AuthResponse, error) {

	result, err := s.identity.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "uid", result.User.ID)
	return toAuthResponse(result), nil

}

func (s *GRPCServer) SendEmailVerification(ctx context.Context, _ *pb.SendEmailVerificationRequest) (*pb.SendEmailVerificationResponse, error) {

	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	email, err := s.identity.SendEmailVerification(ctx, claims.Subject)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.SendEmailVerificationResponse{Email: email}, nil

}

func (s *GRPCServer) SendVerificationCode(ctx context.Context, req *pb.SendVerificationCodeRequest) (*pb.SendVerificationCodeResponse, error) {

	timeout := time.Duration(req.TimeoutSeconds) * time.Second

	d, err := s.identity.SendVerificationCode(ctx, req.PhoneNumber, timeout, req.ResendToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.SendVerificationCodeResponse{
		VerificationId: d.VerificationID,
		ResendToken:    d.ResendToken,
		AutoVerified:   d.AutoVerified,
		Code:           d.Code,
	}, nil

}

// Unlink detaches the named provider, or the one the session was opened with
// when none is named.
func (s *GRPCServer) Unlink(ctx context.Context, req *pb.UnlinkRequest) (*pb.UnlinkResponse, error) {

	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	provider := req.Provider
	if provider == "" {
		provider = claims.Provider
	}

	if err := s.identity.Unlink(ctx, claims.Subject, provider); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.UnlinkResponse{}, nil

}
