package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type healthChecker interface {
	Check(ctx context.Context, in *healthpb.HealthCheckRequest, opts ...grpc.CallOption) (*healthpb.HealthCheckResponse, error)
}

type GRPCClient struct {
	endpointURL    string
	requestTimeout time.Duration
	conn           *grpc.ClientConn
	client         pb.IdentityServiceClient
	health         healthChecker
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// timeoutInterceptor bounds calls that carry no deadline of their own.
func (s *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := ctx.Deadline(); !ok && s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGophAuthClient connects lazily to endpointURL. opts are appended to the
// default dial options.
func NewGophAuthClient(endpointURL string, requestTimeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, requestTimeout: requestTimeout}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.timeoutInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(pb.CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewIdentityServiceClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.IdentityService_ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return common.ErrProviderUnavailable
	}
	return nil
}

func (s *GRPCClient) SignIn(ctx context.Context, r models.SignInRequest) (*models.Session, error) {
	req := &pb.SignInRequest{
		Provider:       string(r.Kind),
		Email:          r.Email,
		Password:       r.Password,
		Token:          r.Token,
		Secret:         r.Secret,
		VerificationId: r.VerificationID,
		Code:           r.Code,
	}

	resp, err := s.client.SignIn(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return toSession(resp)
}

func (s *GRPCClient) CreateAccount(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := s.client.CreateAccount(ctx, &pb.CreateAccountRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	return toSession(resp)
}

func (s *GRPCClient) SendEmailVerification(ctx context.Context, sess *models.Session) error {
	ctx = withAccessToken(ctx, sess.IDToken)
	if _, err := s.client.SendEmailVerification(ctx, &pb.SendEmailVerificationRequest{}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) SendVerificationCode(ctx context.Context, phoneNumber string, timeout time.Duration, resendToken string) (*models.PhoneDispatch, error) {
	req := &pb.SendVerificationCodeRequest{
		PhoneNumber:    phoneNumber,
		TimeoutSeconds: int32(timeout / time.Second),
		ResendToken:    resendToken,
	}

	resp, err := s.client.SendVerificationCode(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &models.PhoneDispatch{
		VerificationID: resp.VerificationId,
		ResendToken:    resp.ResendToken,
		AutoVerified:   resp.AutoVerified,
		Code:           resp.Code,
	}, nil
}

func (s *GRPCClient) Unlink(ctx context.Context, sess *models.Session) error {
	ctx = withAccessToken(ctx, sess.IDToken)
	if _, err := s.client.Unlink(ctx, &pb.UnlinkRequest{Provider: string(sess.Provider)}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func toSession(resp *pb.AuthResponse) (*models.Session, error) {
	if resp == nil || resp.User == nil {
		return nil, fmt.Errorf("%w: empty auth response", common.ErrorInternal)
	}
	return &models.Session{
		ID:            resp.User.Id,
		Email:         resp.User.Email,
		PhoneNumber:   resp.User.PhoneNumber,
		EmailVerified: resp.User.EmailVerified,
		Provider:      models.ProviderKind(resp.User.Provider),
		IDToken:       resp.AccessToken,
	}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	if known, ok := common.ErrorByMessage(st.Message()); ok {
		return known
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return common.ErrProviderUnavailable
	case codes.Unauthenticated, codes.PermissionDenied:
		return common.ErrInvalidCredential
	case codes.AlreadyExists:
		return common.ErrAccountCollision
	case codes.ResourceExhausted:
		return common.ErrQuotaExceeded
	case codes.FailedPrecondition:
		return common.ErrProviderDisabled
	case codes.InvalidArgument:
		return common.ErrValidation
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
