package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// helper to build server
func newTestServer(secret string) *GRPCServer {
	return newServer(&tokenIdentity{secret: []byte(secret)})
}

// tokenIdentity validates real tokens and nothing else.
type tokenIdentity struct {
	fakeIdentity
	secret []byte
}

func (t *tokenIdentity) Authenticate(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, t.secret)
}

func TestInterceptor_Public_AllowsWithoutToken(t *testing.T) {
	s := newTestServer("secret")

	ctx := context.Background()
	info := &grpc.UnaryServerInfo{FullMethod: pb.IdentityService_SignIn_FullMethodName}
	handlerCalled := false

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestInterceptor_Protected_MissingToken(t *testing.T) {
	s := newTestServer("secret")

	ctx := context.Background()
	info := &grpc.UnaryServerInfo{FullMethod: pb.IdentityService_Unlink_FullMethodName}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != common.ErrInvalidToken.Error() {
		t.Fatalf("unexpected message %q", status.Convert(err).Message())
	}
}

func TestInterceptor_Protected_BadTokens(t *testing.T) {
	secret := "secret"
	s := newTestServer(secret)

	expired, err := auth.GenerateToken("user-1", "password", []byte(secret), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	tests := []struct {
		name  string
		token string
		msg   string
	}{
		{"garbage", "not-a-valid-jwt", common.ErrInvalidToken.Error()},
		{"expired", expired, common.ErrTokenExpired.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := metadata.New(map[string]string{common.AccessTokenHeaderName: tt.token})
			ctx := metadata.NewIncomingContext(context.Background(), md)
			info := &grpc.UnaryServerInfo{FullMethod: pb.IdentityService_SendEmailVerification_FullMethodName}

			h := func(ctx context.Context, req interface{}) (interface{}, error) {
				t.Fatal("handler should not be called for invalid token")
				return nil, nil
			}

			_, err := s.accessTokenInterceptor(ctx, nil, info, h)
			if status.Code(err) != codes.Unauthenticated {
				t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
			}
			if status.Convert(err).Message() != tt.msg {
				t.Fatalf("got message %q, want %q", status.Convert(err).Message(), tt.msg)
			}
		})
	}
}

func TestInterceptor_Protected_ValidToken_SetsClaims(t *testing.T) {
	secret := "super-secret"
	s := newTestServer(secret)

	userID := "user-123"
	token, err := auth.GenerateToken(userID, "google", []byte(secret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	md := metadata.New(map[string]string{
		common.AccessTokenHeaderName: token,
	})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: pb.IdentityService_Unlink_FullMethodName}

	var got *auth.Claims
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got, _ = claimsFromContext(ctx)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
	if got == nil || got.Subject != userID || got.Provider != "google" {
		t.Fatalf("claims not propagated in context: %+v", got)
	}
}

type rpcCall struct{ method, code string }

type recordingRPC struct{ calls []rpcCall }

func (r *recordingRPC) ObserveRPC(method, code string, _ time.Duration) {
	r.calls = append(r.calls, rpcCall{method, code})
}

func TestMetricsInterceptor_RecordsCode(t *testing.T) {
	s := newTestServer("secret")
	rec := &recordingRPC{}
	s.metrics = rec

	info := &grpc.UnaryServerInfo{FullMethod: pb.IdentityService_SignIn_FullMethodName}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.Unauthenticated, "invalid credential")
	}

	_, _ = s.metricsInterceptor(context.Background(), nil, info, h)

	if len(rec.calls) != 1 || rec.calls[0] != (rpcCall{pb.IdentityService_SignIn_FullMethodName, "Unauthenticated"}) {
		t.Fatalf("unexpected calls: %+v", rec.calls)
	}
}
