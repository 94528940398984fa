package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	IdentityService_ServiceName                          = "gophauth.IdentityService"
	IdentityService_SignIn_FullMethodName                = "/gophauth.IdentityService/SignIn"
	IdentityService_CreateAccount_FullMethodName         = "/gophauth.IdentityService/CreateAccount"
	IdentityService_SendEmailVerification_FullMethodName = "/gophauth.IdentityService/SendEmailVerification"
	IdentityService_SendVerificationCode_FullMethodName  = "/gophauth.IdentityService/SendVerificationCode"
	IdentityService_Unlink_FullMethodName                = "/gophauth.IdentityService/Unlink"
)

type IdentityServiceClient interface {
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	SendEmailVerification(ctx context.Context, in *SendEmailVerificationRequest, opts ...grpc.CallOption) (*SendEmailVerificationResponse, error)
	SendVerificationCode(ctx context.Context, in *SendVerificationCodeRequest, opts ...grpc.CallOption) (*SendVerificationCodeResponse, error)
	Unlink(ctx context.Context, in *UnlinkRequest, opts ...grpc.CallOption) (*UnlinkResponse, error)
}

type identityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityServiceClient(cc grpc.ClientConnInterface) IdentityServiceClient {
	return &identityServiceClient{cc}
}

func (c *identityServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *identityServiceClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	out := new(AuthResponse)
	if err := c.invoke(ctx, IdentityService_SignIn_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityServiceClient) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	out := new(AuthResponse)
	if err := c.invoke(ctx, IdentityService_CreateAccount_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityServiceClient) SendEmailVerification(ctx context.Context, in *SendEmailVerificationRequest, opts ...grpc.CallOption) (*SendEmailVerificationResponse, error) {
	out := new(SendEmailVerificationResponse)
	if err := c.invoke(ctx, IdentityService_SendEmailVerification_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityServiceClient) SendVerificationCode(ctx context.Context, in *SendVerificationCodeRequest, opts ...grpc.CallOption) (*SendVerificationCodeResponse, error) {
	out := new(SendVerificationCodeResponse)
	if err := c.invoke(ctx, IdentityService_SendVerificationCode_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityServiceClient) Unlink(ctx context.Context, in *UnlinkRequest, opts ...grpc.CallOption) (*UnlinkResponse, error) {
	out := new(UnlinkResponse)
	if err := c.invoke(ctx, IdentityService_Unlink_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

type IdentityServiceServer interface {
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	CreateAccount(context.Context, *CreateAccountRequest) (*AuthResponse, error)
	SendEmailVerification(context.Context, *SendEmailVerificationRequest) (*SendEmailVerificationResponse, error)
	SendVerificationCode(context.Context, *SendVerificationCodeRequest) (*SendVerificationCodeResponse, error)
	Unlink(context.Context, *UnlinkRequest) (*UnlinkResponse, error)
}

// UnimplementedIdentityServiceServer can be embedded to keep forward
// compatibility when methods are added.
type UnimplementedIdentityServiceServer struct{}

func (UnimplementedIdentityServiceServer) SignIn(context.Context, *SignInRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedIdentityServiceServer) CreateAccount(context.Context, *CreateAccountRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateAccount not implemented")
}
func (UnimplementedIdentityServiceServer) SendEmailVerification(context.Context, *SendEmailVerificationRequest) (*SendEmailVerificationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SendEmailVerification not implemented")
}
func (UnimplementedIdentityServiceServer) SendVerificationCode(context.Context, *SendVerificationCodeRequest) (*SendVerificationCodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SendVerificationCode not implemented")
}
func (UnimplementedIdentityServiceServer) Unlink(context.Context, *UnlinkRequest) (*UnlinkResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Unlink not implemented")
}

func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&IdentityService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](method string, call func(IdentityServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IdentityServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(IdentityServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var IdentityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityService_ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SignIn",
			Handler:    unaryHandler(IdentityService_SignIn_FullMethodName, IdentityServiceServer.SignIn),
		},
		{
			MethodName: "CreateAccount",
			Handler:    unaryHandler(IdentityService_CreateAccount_FullMethodName, IdentityServiceServer.CreateAccount),
		},
		{
			MethodName: "SendEmailVerification",
			Handler:    unaryHandler(IdentityService_SendEmailVerification_FullMethodName, IdentityServiceServer.SendEmailVerification),
		},
		{
			MethodName: "SendVerificationCode",
			Handler:    unaryHandler(IdentityService_SendVerificationCode_FullMethodName, IdentityServiceServer.SendVerificationCode),
		},
		{
			MethodName: "Unlink",
			Handler:    unaryHandler(IdentityService_Unlink_FullMethodName, IdentityServiceServer.Unlink),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity.proto",
}
