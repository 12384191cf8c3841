package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/webotp/internal/pkg/goerror"
)

type GenerateSMSInput struct {
	Origin   string `json:"origin" validate:"omitempty,originhost"`
	Embedded string `json:"embedded" validate:"omitempty,originhost"`
	Via      string `json:"via" validate:"omitempty,oneof=direct broker"`
}

type GenerateSMSOutput struct {
	Message string
	DeliverSMSOutput
}

func (s *Usecase) GenerateSMS(ctx context.Context, in GenerateSMSInput) (*GenerateSMSOutput, error) {
	ctx, span := s.startSpan(ctx, "GenerateSMS")
	defer span.End()

	in.Origin = strings.ToLower(strings.TrimSpace(in.Origin))
	in.Embedded = strings.ToLower(strings.TrimSpace(in.Embedded))
	in.Via = strings.ToLower(strings.TrimSpace(in.Via))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	_, text, err := s.generator.Generate(in.Origin, in.Embedded)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate sms", "error", err)
		return nil, goerror.NewServer(err)
	}

	out, err := s.send(ctx, text, in.Via)
	if err != nil {
		return nil, err
	}

	return &GenerateSMSOutput{Message: text, DeliverSMSOutput: *out}, nil
}
