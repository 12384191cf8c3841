package usecase

import (
	"context"

	"github.com/shandysiswandi/webotp/internal/webotp"
)

type StatusOutput struct {
	Active       bool
	Capabilities webotp.Capabilities
	Pending      int
}

func (s *Usecase) Status(ctx context.Context) StatusOutput {
	_, span := s.startSpan(ctx, "Status")
	defer span.End()

	out := StatusOutput{
		Capabilities: s.platform.Capabilities(),
		Pending:      s.platform.Pending(),
	}
	if s.bridge != nil {
		out.Active = s.bridge.Active()
	}
	return out
}
