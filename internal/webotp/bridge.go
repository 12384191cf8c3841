package webotp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shandysiswandi/webotp/internal/pkg/clock"
	"github.com/shandysiswandi/webotp/internal/pkg/goroutine"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/atomic"
)

// Bridge manages a single in-flight one-time-code request and dispatches the
// retrieved code as an event.
//
// Start and Stop never fail from the caller's point of view; every error is
// logged and leaves the bridge inactive.
type Bridge struct {
	platform   Platform
	dispatcher Dispatcher
	caps       Capabilities

	log        *slog.Logger
	eventName  string
	transports []string
	gm         *goroutine.Manager
	clock      clock.Clocker
	meter      metric.Meter
	counters   counters

	mu     sync.Mutex
	cancel context.CancelFunc
	active *atomic.Bool
	gen    *atomic.Uint64
}

// New detects platform capabilities and builds a Bridge.
//
// It returns ErrUnsupported when the platform has no one-time-password
// credential type. A missing credentials API or an insecure context is only
// logged; Start then no-ops.
func New(platform Platform, dispatcher Dispatcher, opts ...Option) (*Bridge, error) {
	if platform == nil {
		return nil, ErrNilPlatform
	}
	if dispatcher == nil {
		return nil, ErrNilDispatcher
	}

	b := &Bridge{
		platform:   platform,
		dispatcher: dispatcher,
		log:        slog.Default(),
		eventName:  EventAutofill,
		transports: []string{TransportSMS},
		clock:      clock.New(),
		meter:      metricnoop.NewMeterProvider().Meter("webotp"),
		active:     atomic.NewBool(false),
		gen:        atomic.NewUint64(0),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.gm == nil {
		b.gm = goroutine.NewManager(goroutine.DefaultMaxGoroutine)
	}
	b.log = b.log.With("prefix", LogPrefix)
	b.counters = newCounters(b.meter, b.log)

	b.caps = platform.Capabilities()
	b.log.Info("script loaded",
		"is_supported", b.caps.OTPCredential,
		"has_creds_api", b.caps.CredentialsAPI,
		"is_secure", b.caps.SecureContext,
		"protocol", b.caps.Protocol,
		"host", b.caps.Host,
	)

	if !b.caps.OTPCredential {
		b.log.Info("OTPCredential not supported in this browser")
		return nil, ErrUnsupported
	}
	if !b.caps.CredentialsAPI {
		b.log.Warn("credentials get is not available, start will be a no-op")
	}
	if !b.caps.SecureContext {
		b.log.Warn("page is not a secure context, the platform may reject requests")
	}

	return b, nil
}

// Capabilities returns the capabilities detected by New.
func (b *Bridge) Capabilities() Capabilities {
	return b.caps
}

// Active reports whether a request is outstanding.
func (b *Bridge) Active() bool {
	return b.active.Load()
}

// Start begins listening for a one-time code, superseding any outstanding
// request. The request outlives ctx; only Stop or a newer Start cancels it.
func (b *Bridge) Start(ctx context.Context) {
	b.log.InfoContext(ctx, "start() called")

	defer func() {
		if rvr := recover(); rvr != nil {
			b.active.Store(false)
			b.log.ErrorContext(ctx, "unexpected exception in start()", "because", rvr)
		}
	}()

	if !b.caps.CredentialsAPI {
		b.log.InfoContext(ctx, "credentials get is not available")
		return
	}

	reqCtx, cancel, gen := b.begin(ctx)

	b.log.InfoContext(ctx, "calling credentials get", "transports", b.transports)
	b.counters.request(ctx)

	req := Request{Transports: append([]string{}, b.transports...)}
	err := b.gm.Go(context.WithoutCancel(ctx), func(context.Context) error {
		cred, err := b.platform.GetCredential(reqCtx, req)
		b.settle(reqCtx, gen, cred, err)
		return nil
	})
	if err != nil {
		if cancel != nil {
			cancel()
		}
		b.finish(gen)
		b.log.ErrorContext(ctx, "unexpected exception in start()", "error", err)
	}
}

// begin swaps in a fresh cancellation handle and marks the bridge active.
func (b *Bridge) begin(ctx context.Context) (context.Context, context.CancelFunc, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active.Load() && b.cancel != nil {
		b.log.InfoContext(ctx, "aborting previous active request before starting a new one")
		b.abort(ctx, b.cancel)
	}

	reqCtx := context.WithoutCancel(ctx)
	var cancel context.CancelFunc
	if b.caps.Cancellation {
		reqCtx, cancel = context.WithCancel(reqCtx)
		b.log.InfoContext(ctx, "cancellation handle created")
	} else {
		b.log.InfoContext(ctx, "cancellation not available")
	}

	b.cancel = cancel
	b.active.Store(true)

	return reqCtx, cancel, b.gen.Inc()
}

// Stop cancels the outstanding request, if it can be cancelled, and marks the
// bridge inactive.
func (b *Bridge) Stop(ctx context.Context) {
	b.log.InfoContext(ctx, "stop() called")

	defer func() {
		if rvr := recover(); rvr != nil {
			b.log.ErrorContext(ctx, "unexpected exception in stop()", "because", rvr)
		}
	}()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.log.InfoContext(ctx, "aborting current request")
		b.abort(ctx, b.cancel)
		b.cancel = nil
	} else {
		b.log.InfoContext(ctx, "no active controller to abort")
	}

	b.active.Store(false)
}

// Close waits for outstanding continuations to finish. It does not cancel
// them; call Stop first to abort the current request.
func (b *Bridge) Close(ctx context.Context) error {
	b.log.InfoContext(ctx, "waiting for outstanding requests")
	return b.gm.Wait()
}

func (b *Bridge) abort(ctx context.Context, cancel context.CancelFunc) {
	defer func() {
		if rvr := recover(); rvr != nil {
			b.log.WarnContext(ctx, "failed to abort request", "because", rvr)
		}
	}()

	cancel()
}

// finish marks the request of generation gen as settled. It reports whether
// that request was still the current one; a stale request leaves the state
// of its successor untouched.
func (b *Bridge) finish(gen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.gen.Load() != gen {
		return false
	}

	b.active.Store(false)
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}

	return true
}

func (b *Bridge) settle(ctx context.Context, gen uint64, cred Credential, err error) {
	aborted := ctx.Err() != nil
	current := b.finish(gen)

	if err != nil {
		name, message := describe(err)
		b.counters.failure(ctx, name)
		b.log.InfoContext(ctx, "credentials get error", "name", name, "message", message, "current", current)
		return
	}

	masked := MaskCode(cred.Code)
	b.counters.code(ctx, current)

	if aborted {
		b.log.InfoContext(ctx, "dropping OTP from aborted request", "code", masked, "current", current)
		return
	}

	b.log.InfoContext(ctx, "OTP received", "code", masked, "transport", cred.Transport)

	evt := Event{Name: b.eventName, OTP: cred.Code, At: b.clock.Now()}
	b.log.InfoContext(ctx, "dispatching event", "event", evt.Name)
	if err := b.dispatcher.Dispatch(context.WithoutCancel(ctx), evt); err != nil {
		b.log.ErrorContext(ctx, "failed to dispatch event", "event", evt.Name, "error", err)
	}
}
