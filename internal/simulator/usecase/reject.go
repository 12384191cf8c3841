package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/webotp/internal/pkg/goerror"
	"github.com/shandysiswandi/webotp/internal/simulator"
)

type RejectInput struct {
	Name    string `json:"name" validate:"required"`
	Message string `json:"message" validate:"max=256"`
}

func (s *Usecase) Reject(ctx context.Context, in RejectInput) (string, error) {
	ctx, span := s.startSpan(ctx, "Reject")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)

	if err := s.validator.Validate(in); err != nil {
		return "", goerror.NewInvalidInput(err)
	}

	id, err := s.platform.Reject(ctx, in.Name, in.Message)
	switch {
	case errors.Is(err, simulator.ErrUnknownErrorName):
		return "", goerror.NewInvalidInput(nil, "name", "name must be one of "+strings.Join(simulator.RejectNames(), " "))
	case errors.Is(err, simulator.ErrNoPendingRequest):
		return "", goerror.NewBusiness("no credential request is waiting", goerror.CodeConflict)
	case err != nil:
		slog.ErrorContext(ctx, "failed to reject credential request", "error", err)
		return "", goerror.NewServer(err)
	}

	return id, nil
}
