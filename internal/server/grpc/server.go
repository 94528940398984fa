package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type identitySvc interface {
	SignIn(ctx context.Context, in services.SignInInput) (*services.AuthResult, error)
	CreateAccount(ctx context.Context, email, password string) (*services.AuthResult, error)
	SendEmailVerification(ctx context.Context, userID string) (string, error)
	SendVerificationCode(ctx context.Context, phoneNumber string, timeout time.Duration, resendToken string) (*services.PhoneDispatch, error)
	Unlink(ctx context.Context, userID, provider string) error
	Authenticate(token string) (*auth.Claims, error)
}

type rpcObserver interface {
	ObserveRPC(method, code string, d time.Duration)
}

type nopRPCObserver struct{}

func (nopRPCObserver) ObserveRPC(string, string, time.Duration) {}

type GRPCServer struct {
	pb.UnimplementedIdentityServiceServer
	address  string
	identity identitySvc
	metrics  rpcObserver
	health   *health.Server
	logger   logging.Logger
}

// NewGRPCServer builds the IdentityService endpoint. m may be nil.
func NewGRPCServer(a string, l logging.Logger, is identitySvc, m rpcObserver) (*GRPCServer, error) {
	if m == nil {
		m = nopRPCObserver{}
	}
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		identity: is,
		metrics:  m,
		health:   health.NewServer(),
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))

	pb.RegisterIdentityServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(pb.IdentityService_ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
