package common

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- MakeRandHexString ----------

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	require.NoError(t, err)
	assert.Len(t, s, n*2)
	_, err = hex.DecodeString(s)
	assert.NoError(t, err)
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

// ---------- MakeRandDigits ----------

func TestMakeRandDigits_OnlyDigits(t *testing.T) {
	s, err := MakeRandDigits(6)
	require.NoError(t, err)
	require.Len(t, s, 6)
	for _, r := range s {
		if r < '0' || r > '9' {
			t.Fatalf("unexpected rune %q in %q", r, s)
		}
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, buf)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	buf, err := GenerateRandByteArray(24)
	require.NoError(t, err)
	assert.Len(t, buf, 24)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerateRandByteArray_ReadError(t *testing.T) {
	orig := randReader
	randReader = failingReader{}
	t.Cleanup(func() { randReader = orig })

	buf, err := GenerateRandByteArray(16)
	assert.Error(t, err)
	assert.Nil(t, buf)
}

// ---------- ErrorByMessage ----------

func TestErrorByMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want error
		ok   bool
	}{
		{ErrAccountCollision.Error(), ErrAccountCollision, true},
		{ErrQuotaExceeded.Error(), ErrQuotaExceeded, true},
		{ErrInvalidPhoneNumber.Error(), ErrInvalidPhoneNumber, true},
		{"something else", nil, false},
	}
	for _, tt := range tests {
		got, ok := ErrorByMessage(tt.msg)
		assert.Equal(t, tt.ok, ok, tt.msg)
		if tt.ok {
			assert.True(t, errors.Is(got, tt.want))
		}
	}
}
