package inbound

import (
	"context"

	"github.com/shandysiswandi/webotp/internal/simulator/usecase"
)

type uc interface {
	Status(ctx context.Context) usecase.StatusOutput
	Start(ctx context.Context) error
	Stop(ctx context.Context)
	DeliverSMS(ctx context.Context, in usecase.DeliverSMSInput) (*usecase.DeliverSMSOutput, error)
	GenerateSMS(ctx context.Context, in usecase.GenerateSMSInput) (*usecase.GenerateSMSOutput, error)
	Reject(ctx context.Context, in usecase.RejectInput) (string, error)
}
