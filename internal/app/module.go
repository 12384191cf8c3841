package app

import (
	"log/slog"

	"github.com/shandysiswandi/webotp/internal/simulator"
	"github.com/shandysiswandi/webotp/internal/simulator/inbound"
	"github.com/shandysiswandi/webotp/internal/simulator/usecase"
)

func (a *App) initModules() {
	dep := usecase.Dependency{
		Platform:   a.platform,
		Generator:  a.generator,
		Publisher:  a.messaging,
		SMSTopic:   a.config.GetString("messaging.topics.sms"),
		Validator:  a.validator,
		Instrument: a.ins,
	}
	if a.bridge != nil {
		dep.Bridge = a.bridge
	}

	inbound.RegisterHTTPEndpoint(a.router, usecase.New(dep), a.hub)

	if a.config.GetBool("simulator.inbox.enabled") {
		inbox := simulator.NewInbox(a.messaging, dep.SMSTopic, a.platform)
		if err := a.goroutine.Go(a.ctx, inbox.Run); err != nil {
			slog.Error("failed to run sms inbox", "topic", dep.SMSTopic, "error", err)
		}
	}
}
