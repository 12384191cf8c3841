package otp_test

import (
	"testing"
	"time"

	libotp "github.com/pquerna/otp"
	"github.com/shandysiswandi/webotp/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 6238 appendix B secret ("12345678901234567890") in base32.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestTOTP_GenerateCode_RFCVector(t *testing.T) {
	o := otp.NewTOTP("webotp", 30, 1, libotp.DigitsEight)

	code, err := o.GenerateCode(rfcSecret, time.Unix(59, 0).UTC())
	require.NoError(t, err)
	assert.Equal(t, "94287082", code)
}

func TestTOTP_RoundTrip(t *testing.T) {
	o := otp.NewTOTP("webotp", 0, 0, otp.Digits(6))

	secret, uri, err := o.Generate("simulator@example.com")
	require.NoError(t, err)
	assert.Contains(t, uri, "otpauth://totp/")

	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	code, err := o.GenerateCode(secret, at)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	assert.True(t, o.Validate(code, secret, at))
	assert.True(t, o.Validate(code, secret, at.Add(30*time.Second)), "within skew")
	assert.False(t, o.Validate(code, secret, at.Add(5*time.Minute)))
}

func TestDigits(t *testing.T) {
	assert.Equal(t, libotp.DigitsEight, otp.Digits(8))
	assert.Equal(t, libotp.DigitsSix, otp.Digits(6))
	assert.Equal(t, libotp.DigitsSix, otp.Digits(7))
}
