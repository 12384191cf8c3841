package otp

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTP defines the contract for TOTP operations.
type OTP interface {
	// Generate creates a secret and provisioning URI for an account name.
	Generate(accountName string) (secret string, uri string, err error)
	// GenerateCode creates a code for the given secret and time.
	GenerateCode(secret string, at time.Time) (string, error)
	// Validate checks whether a code is valid at the given time.
	Validate(code, secret string, at time.Time) bool
}

// TOTP implements OTP using the Time-based One-Time Password algorithm.
type TOTP struct {
	issuer string
	period uint
	skew   uint
	digits otp.Digits
}

// Digits maps a configured digit count onto the library type. Anything other
// than 8 yields six digits.
func Digits(n int) otp.Digits {
	if n == 8 {
		return otp.DigitsEight
	}
	return otp.DigitsSix
}

// NewTOTP constructs a TOTP instance. A zero period means 30 seconds and a
// zero skew means one step either side.
func NewTOTP(issuer string, period, skew uint, digits otp.Digits) *TOTP {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}
	if period == 0 {
		period = 30
	}
	if skew == 0 {
		skew = 1
	}

	return &TOTP{issuer: issuer, period: period, skew: skew, digits: digits}
}

// Generate creates a secret and provisioning URI for an account name.
func (o *TOTP) Generate(accountName string) (secret string, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      o.issuer,
		AccountName: accountName,
		Period:      o.period,
		SecretSize:  20,
		Digits:      o.digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

// GenerateCode creates a code for the given secret and time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, o.opts())
}

// Validate checks whether a code is valid at the given time.
func (o *TOTP) Validate(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, o.opts())
	return ok && err == nil
}

func (o *TOTP) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    o.period,
		Skew:      o.skew,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}
