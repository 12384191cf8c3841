package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/webotp/internal/pkg/goerror"
)

// Start issues a credential request. The bridge itself only logs a missing
// credentials API, so it is reported to the caller here.
func (s *Usecase) Start(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Start")
	defer span.End()

	if s.bridge == nil {
		return goerror.NewBusiness("OTPCredential is not supported", goerror.CodeUnavailable)
	}
	if !s.bridge.Capabilities().CredentialsAPI {
		slog.WarnContext(ctx, "start requested without credentials api")
		return goerror.NewBusiness("credentials api is not available", goerror.CodeUnavailable)
	}

	s.bridge.Start(ctx)
	return nil
}

func (s *Usecase) Stop(ctx context.Context) {
	ctx, span := s.startSpan(ctx, "Stop")
	defer span.End()

	if s.bridge != nil {
		s.bridge.Stop(ctx)
	}
}
