package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/webotp/internal/pkg/clock"
	"github.com/shandysiswandi/webotp/internal/pkg/config"
	"github.com/shandysiswandi/webotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/webotp/internal/pkg/instrument"
	"github.com/shandysiswandi/webotp/internal/pkg/messaging"
	"github.com/shandysiswandi/webotp/internal/pkg/otp"
	"github.com/shandysiswandi/webotp/internal/pkg/router"
	"github.com/shandysiswandi/webotp/internal/pkg/uid"
	"github.com/shandysiswandi/webotp/internal/pkg/validator"
	"github.com/shandysiswandi/webotp/internal/simulator"
	"github.com/shandysiswandi/webotp/internal/webotp"
)

// App wires the simulator and manages its lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	totp      otp.OTP

	// resources
	messaging messaging.Client

	// simulator
	platform  *simulator.Platform
	hub       *simulator.Hub
	generator *simulator.Generator
	bridge    *webotp.Bridge

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initMessaging()
	app.initSimulator()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
