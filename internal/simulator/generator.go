package simulator

import (
	"fmt"

	"github.com/shandysiswandi/webotp/internal/pkg/clock"
	"github.com/shandysiswandi/webotp/internal/pkg/otp"
	"github.com/shandysiswandi/webotp/internal/pkg/smscode"
)

// Generator produces origin-bound SMS texts carrying TOTP codes.
type Generator struct {
	totp   otp.OTP
	secret string
	clock  clock.Clocker
	origin string
}

// NewGenerator uses secret when given, otherwise provisions a fresh one for
// origin.
func NewGenerator(totp otp.OTP, secret, origin string, clk clock.Clocker) (*Generator, error) {
	if clk == nil {
		clk = clock.New()
	}
	if secret == "" {
		s, _, err := totp.Generate(origin)
		if err != nil {
			return nil, fmt.Errorf("simulator: provision totp secret: %w", err)
		}
		secret = s
	}

	return &Generator{totp: totp, secret: secret, clock: clk, origin: origin}, nil
}

// Generate renders an SMS for the current time step. An empty origin uses
// the default; embedded targets a cross-origin iframe.
func (g *Generator) Generate(origin, embedded string) (smscode.Message, string, error) {
	if origin == "" {
		origin = g.origin
	}

	code, err := g.totp.GenerateCode(g.secret, g.clock.Now())
	if err != nil {
		return smscode.Message{}, "", fmt.Errorf("simulator: generate code: %w", err)
	}

	msg := smscode.Message{
		Origin:   origin,
		Code:     code,
		Embedded: embedded,
		Body:     fmt.Sprintf("Your verification code is %s.", code),
	}
	return msg, smscode.Format(msg), nil
}

// Verify reports whether code is valid for the current time step.
func (g *Generator) Verify(code string) bool {
	return g.totp.Validate(code, g.secret, g.clock.Now())
}
