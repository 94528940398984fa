package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePhoneBackend struct {
	calls       int
	lastNumber  string
	lastTimeout time.Duration
	lastResend  string
	hasDeadline bool

	res *models.PhoneDispatch
	err error
}

func (f *fakePhoneBackend) SendVerificationCode(ctx context.Context, phoneNumber string, timeout time.Duration, resendToken string) (*models.PhoneDispatch, error) {
	f.calls++
	f.lastNumber = phoneNumber
	f.lastTimeout = timeout
	f.lastResend = resendToken
	_, f.hasDeadline = ctx.Deadline()
	return f.res, f.err
}

type outcome struct {
	auto    *Credential
	pending *models.PendingVerification
	err     error
	n       int
}

// collect returns callbacks feeding a channel and a wait function that
// returns the first outcome and checks no second one arrives.
func collect(t *testing.T) (PhoneCallbacks, func() outcome) {
	t.Helper()
	ch := make(chan outcome, 3)
	cb := PhoneCallbacks{
		AutoVerified: func(c *Credential) { ch <- outcome{auto: c} },
		CodeSent:     func(p *models.PendingVerification) { ch <- outcome{pending: p} },
		Failed:       func(err error) { ch <- outcome{err: err} },
	}
	wait := func() outcome {
		var got outcome
		select {
		case got = <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("no phone callback")
		}
		select {
		case <-ch:
			t.Fatal("more than one phone callback")
		case <-time.After(20 * time.Millisecond):
		}
		return got
	}
	return cb, wait
}

func TestRequestVerification_CodeSent(t *testing.T) {
	be := &fakePhoneBackend{res: &models.PhoneDispatch{VerificationID: "v1", ResendToken: "r1"}}
	p := NewPhoneProvider(be, nil)
	cb, wait := collect(t)

	p.RequestVerification(context.Background(), "+1", "555-123 4567", 60*time.Second, cb)
	got := wait()

	require.NoError(t, got.err)
	require.NotNil(t, got.pending)
	assert.Equal(t, &models.PendingVerification{VerificationID: "v1", ResendToken: "r1", PhoneNumber: "+15551234567"}, got.pending)
	assert.Equal(t, "+15551234567", be.lastNumber)
	assert.Equal(t, 60*time.Second, be.lastTimeout)
	assert.Empty(t, be.lastResend)
	assert.True(t, be.hasDeadline)
}

func TestRequestVerification_AutoVerified(t *testing.T) {
	be := &fakePhoneBackend{res: &models.PhoneDispatch{VerificationID: "v1", AutoVerified: true, Code: "123456"}}
	p := NewPhoneProvider(be, nil)
	cb, wait := collect(t)

	p.RequestVerification(context.Background(), "+1", "5551234567", 0, cb)
	got := wait()

	require.NotNil(t, got.auto)
	assert.Equal(t, models.ProviderPhone, got.auto.Kind())
	req, err := got.auto.Consume()
	require.NoError(t, err)
	assert.Equal(t, "v1", req.VerificationID)
	assert.Equal(t, "123456", req.Code)
	assert.Equal(t, common.DefaultPhoneVerificationTimeout*time.Second, be.lastTimeout)
}

func TestRequestVerification_Failed(t *testing.T) {
	for _, want := range []error{common.ErrInvalidPhoneNumber, common.ErrQuotaExceeded, common.ErrProviderDisabled, common.ErrProviderUnavailable} {
		t.Run(want.Error(), func(t *testing.T) {
			be := &fakePhoneBackend{err: want}
			p := NewPhoneProvider(be, nil)
			cb, wait := collect(t)

			p.RequestVerification(context.Background(), "+1", "5551234567", time.Second, cb)
			got := wait()
			require.ErrorIs(t, got.err, want)
		})
	}
}

func TestRequestVerification_EmptyNumber_NoBackendCall(t *testing.T) {
	be := &fakePhoneBackend{}
	p := NewPhoneProvider(be, nil)
	cb, wait := collect(t)

	p.RequestVerification(context.Background(), "+1", "  ", time.Second, cb)
	got := wait()

	require.ErrorIs(t, got.err, common.ErrInvalidPhoneNumber)
	assert.Zero(t, be.calls)
}

func TestResendVerification_PassesToken(t *testing.T) {
	be := &fakePhoneBackend{res: &models.PhoneDispatch{VerificationID: "v2", ResendToken: "r2"}}
	p := NewPhoneProvider(be, nil)
	cb, wait := collect(t)

	p.ResendVerification(context.Background(), "+1", "5551234567", time.Second, "r1", cb)
	got := wait()

	require.NotNil(t, got.pending)
	assert.Equal(t, "v2", got.pending.VerificationID)
	assert.Equal(t, "r1", be.lastResend)
}

func TestCompleteVerification(t *testing.T) {
	p := NewPhoneProvider(&fakePhoneBackend{}, nil)
	pending := &models.PendingVerification{VerificationID: "v1", PhoneNumber: "+15551234567"}

	_, err := p.CompleteVerification(pending, "")
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = p.CompleteVerification(nil, "123456")
	require.ErrorIs(t, err, common.ErrValidation)

	c, err := p.CompleteVerification(pending, " 123456 ")
	require.NoError(t, err)
	req, err := c.Consume()
	require.NoError(t, err)
	assert.Equal(t, models.SignInRequest{Kind: models.ProviderPhone, VerificationID: "v1", Code: "123456"}, req)
}

func TestFullNumber(t *testing.T) {
	assert.Equal(t, "+15551234567", FullNumber("+1", "5551234567"))
	assert.Equal(t, "+15551234567", FullNumber(" +1 ", "(555) 123-4567"))
}
