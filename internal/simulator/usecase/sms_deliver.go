package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/webotp/internal/pkg/goerror"
	"github.com/shandysiswandi/webotp/internal/pkg/messaging"
	"github.com/shandysiswandi/webotp/internal/pkg/smscode"
	"github.com/shandysiswandi/webotp/internal/simulator"
)

type DeliverSMSInput struct {
	Message string `json:"message" validate:"required,max=1024,smsbinding"`
	Via     string `json:"via" validate:"omitempty,oneof=direct broker"`
}

type DeliverSMSOutput struct {
	Queued   bool
	Delivery simulator.Delivery
	// CurrentTOTP is set when the delivered code is the generator's code for
	// the current time step.
	CurrentTOTP bool
}

func (s *Usecase) DeliverSMS(ctx context.Context, in DeliverSMSInput) (*DeliverSMSOutput, error) {
	ctx, span := s.startSpan(ctx, "DeliverSMS")
	defer span.End()

	in.Via = strings.ToLower(strings.TrimSpace(in.Via))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	return s.send(ctx, in.Message, in.Via)
}

func (s *Usecase) send(ctx context.Context, text, via string) (*DeliverSMSOutput, error) {
	if via == ViaBroker {
		if s.publisher == nil || s.smsTopic == "" {
			return nil, goerror.NewBusiness("sms inbox is not configured", goerror.CodeUnavailable)
		}
		if err := s.publisher.Publish(ctx, s.smsTopic, messaging.Message{Body: []byte(text)}); err != nil {
			slog.ErrorContext(ctx, "failed to publish sms to inbox", "topic", s.smsTopic, "error", err)
			return nil, goerror.NewServer(err)
		}
		return &DeliverSMSOutput{Queued: true}, nil
	}

	d, err := s.platform.Deliver(ctx, text)
	switch {
	case errors.Is(err, simulator.ErrNoPendingRequest):
		return nil, goerror.NewBusiness("no credential request is waiting", goerror.CodeConflict)
	case errors.Is(err, smscode.ErrOriginMismatch):
		return nil, goerror.NewInvalidInput(nil, "message", "origin does not match the page host")
	case errors.Is(err, smscode.ErrEmpty), errors.Is(err, smscode.ErrNoBinding):
		return nil, goerror.NewInvalidInput(nil, "message", err.Error())
	case err != nil:
		slog.ErrorContext(ctx, "failed to deliver sms", "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &DeliverSMSOutput{Delivery: d}
	if s.generator != nil {
		out.CurrentTOTP = s.generator.Verify(d.Code)
	}
	slog.InfoContext(ctx, "sms resolved credential request", "request_id", d.RequestID, "current_totp", out.CurrentTOTP)

	return out, nil
}
