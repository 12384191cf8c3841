//go:build js && wasm

// Command webotp is the browser build of the bridge. It registers the start
// and stop functions on the page's global object and then parks forever.
package main

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/webotp/internal/browser"
	"github.com/shandysiswandi/webotp/internal/pkg/config"
	"github.com/shandysiswandi/webotp/internal/pkg/instrument"
	"github.com/shandysiswandi/webotp/internal/webotp"
)

//go:embed config.yaml
var rawConfig []byte

func main() {
	cfg, err := config.NewViperFromBytes("yaml", rawConfig)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		return
	}

	if _, err := instrument.New(context.Background(), &instrument.Config{
		ServiceName: cfg.GetString("instrument.service_name"),
		LogLevel:    cfg.GetString("instrument.log_level"),
		MaskFields:  cfg.GetArray("instrument.log_mask_fields"),
		Mask:        webotp.MaskCode,
	}); err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		return
	}

	bridge, err := webotp.New(browser.NewPlatform(), browser.NewDispatcher(),
		webotp.WithLogger(slog.Default()),
		webotp.WithEventName(cfg.GetString("bridge.event_name")),
		webotp.WithTransports(cfg.GetArray("bridge.transports")...),
	)
	if errors.Is(err, webotp.ErrUnsupported) {
		return
	}
	if err != nil {
		slog.Error("failed to init webotp bridge", "error", err)
		return
	}

	browser.Export(bridge, browser.Globals{
		Start: cfg.GetString("bridge.global.start"),
		Stop:  cfg.GetString("bridge.global.stop"),
	})

	select {}
}
