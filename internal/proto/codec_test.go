package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestCodec_PlainStruct(t *testing.T) {
	c := Codec{}
	b, err := c.Marshal(&SignInRequest{Provider: ProviderPassword, Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"password","email":"a@b.com","password":"secret"}`, string(b))

	var got SignInRequest
	require.NoError(t, c.Unmarshal(b, &got))
	assert.Equal(t, "a@b.com", got.Email)
}

func TestCodec_ProtoMessage(t *testing.T) {
	c := Codec{}
	b, err := c.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
	require.NoError(t, err)
	assert.Contains(t, string(b), "SERVING")

	var got healthpb.HealthCheckResponse
	require.NoError(t, c.Unmarshal([]byte(`{"status":"NOT_SERVING","extra":1}`), &got))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, got.GetStatus())
}
