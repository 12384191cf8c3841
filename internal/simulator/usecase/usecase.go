package usecase

import (
	"context"

	"github.com/shandysiswandi/webotp/internal/pkg/instrument"
	"github.com/shandysiswandi/webotp/internal/pkg/messaging"
	"github.com/shandysiswandi/webotp/internal/pkg/smscode"
	"github.com/shandysiswandi/webotp/internal/pkg/validator"
	"github.com/shandysiswandi/webotp/internal/simulator"
	"github.com/shandysiswandi/webotp/internal/webotp"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ViaDirect hands an SMS straight to the simulated platform.
	ViaDirect = "direct"
	// ViaBroker publishes an SMS to the inbox topic.
	ViaBroker = "broker"
)

type bridge interface {
	Start(ctx context.Context)
	Stop(ctx context.Context)
	Active() bool
	Capabilities() webotp.Capabilities
}

type platform interface {
	Capabilities() webotp.Capabilities
	Pending() int
	Deliver(ctx context.Context, text string) (simulator.Delivery, error)
	Reject(ctx context.Context, name, message string) (string, error)
}

type generator interface {
	Generate(origin, embedded string) (smscode.Message, string, error)
	Verify(code string) bool
}

type Usecase struct {
	bridge    bridge
	platform  platform
	generator generator
	publisher messaging.Publisher
	smsTopic  string
	validator validator.Validator
	ins       instrument.Instrumentation
}

// Dependency wires a Usecase. Bridge is nil when the simulated page has no
// one-time-password credential type.
type Dependency struct {
	Bridge     bridge
	Platform   platform
	Generator  generator
	Publisher  messaging.Publisher
	SMSTopic   string
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Usecase{
		bridge:    dep.Bridge,
		platform:  dep.Platform,
		generator: dep.Generator,
		publisher: dep.Publisher,
		smsTopic:  dep.SMSTopic,
		validator: dep.Validator,
		ins:       ins,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("simulator.usecase").Start(ctx, name)
}
