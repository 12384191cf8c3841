package webotp_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/webotp/internal/pkg/clock"
	"github.com/shandysiswandi/webotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/webotp/internal/webotp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullCaps = webotp.Capabilities{
	OTPCredential:  true,
	CredentialsAPI: true,
	SecureContext:  true,
	Cancellation:   true,
	Protocol:       "https:",
	Host:           "example.com",
}

type result struct {
	cred webotp.Credential
	err  error
}

type call struct {
	ctx           context.Context
	req           webotp.Request
	priorCanceled bool
	result        chan result
}

// fakePlatform records every request. Unless immediate is set, a request
// blocks until a result is sent on its channel or, when honorCancel is set,
// until its context is cancelled.
type fakePlatform struct {
	caps        webotp.Capabilities
	immediate   *result
	honorCancel bool

	mu    sync.Mutex
	calls []*call
}

func (p *fakePlatform) Capabilities() webotp.Capabilities {
	return p.caps
}

func (p *fakePlatform) GetCredential(ctx context.Context, req webotp.Request) (webotp.Credential, error) {
	c := &call{ctx: ctx, req: req, result: make(chan result, 1)}

	p.mu.Lock()
	if n := len(p.calls); n > 0 {
		c.priorCanceled = p.calls[n-1].ctx.Err() != nil
	}
	p.calls = append(p.calls, c)
	p.mu.Unlock()

	if p.immediate != nil {
		return p.immediate.cred, p.immediate.err
	}

	if !p.honorCancel {
		r := <-c.result
		return r.cred, r.err
	}

	select {
	case r := <-c.result:
		return r.cred, r.err
	case <-ctx.Done():
		return webotp.Credential{}, webotp.NewCredentialError(webotp.ErrNameAbort, "The operation was aborted.")
	}
}

func (p *fakePlatform) call(i int) *call {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i >= len(p.calls) {
		return nil
	}
	return p.calls[i]
}

func (p *fakePlatform) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakePlatform) waitCalls(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return p.count() >= n }, time.Second, 5*time.Millisecond)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []webotp.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, evt webotp.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, evt)
	return nil
}

func (d *recordingDispatcher) all() []webotp.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]webotp.Event{}, d.events...)
}

// syncBuffer lets tests read logs while continuations are still writing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func newBridge(t *testing.T, p *fakePlatform, d webotp.Dispatcher, opts ...webotp.Option) (*webotp.Bridge, *syncBuffer) {
	t.Helper()

	buf := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]webotp.Option{webotp.WithLogger(logger)}, opts...)

	b, err := webotp.New(p, d, opts...)
	require.NoError(t, err)
	return b, buf
}

func TestNew_Unsupported(t *testing.T) {
	p := &fakePlatform{caps: webotp.Capabilities{CredentialsAPI: true}}

	b, err := webotp.New(p, &recordingDispatcher{}, webotp.WithLogger(slog.New(slog.DiscardHandler)))
	assert.ErrorIs(t, err, webotp.ErrUnsupported)
	assert.Nil(t, b)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := webotp.New(nil, &recordingDispatcher{})
	assert.ErrorIs(t, err, webotp.ErrNilPlatform)

	_, err = webotp.New(&fakePlatform{caps: fullCaps}, nil)
	assert.ErrorIs(t, err, webotp.ErrNilDispatcher)
}

func TestNew_InsecureContextStillBuilds(t *testing.T) {
	caps := fullCaps
	caps.SecureContext = false
	p := &fakePlatform{caps: caps}

	b, buf := newBridge(t, p, &recordingDispatcher{})
	assert.Equal(t, caps, b.Capabilities())
	assert.Contains(t, buf.String(), "not a secure context")
}

func TestStart_WithoutCredentialsAPI(t *testing.T) {
	caps := fullCaps
	caps.CredentialsAPI = false
	p := &fakePlatform{caps: caps}
	d := &recordingDispatcher{}
	b, buf := newBridge(t, p, d)

	b.Start(context.Background())
	require.NoError(t, b.Close(context.Background()))

	assert.False(t, b.Active())
	assert.Zero(t, p.count())
	assert.Empty(t, d.all())
	assert.Contains(t, buf.String(), "credentials get is not available")
}

func TestStart_Success(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	p := &fakePlatform{caps: fullCaps, immediate: &result{cred: webotp.Credential{Code: "123456", Transport: "sms"}}}
	d := &recordingDispatcher{}
	b, buf := newBridge(t, p, d, webotp.WithClock(clock.Fixed(at)))

	b.Start(context.Background())
	require.NoError(t, b.Close(context.Background()))

	assert.False(t, b.Active())
	require.Len(t, d.all(), 1)
	assert.Equal(t, webotp.Event{Name: webotp.EventAutofill, OTP: "123456", At: at}, d.all()[0])

	require.Equal(t, 1, p.count())
	assert.Equal(t, []string{webotp.TransportSMS}, p.call(0).req.Transports)

	logs := buf.String()
	assert.Contains(t, logs, "****56")
	assert.NotContains(t, logs, "123456")
	assert.Contains(t, logs, webotp.LogPrefix)
}

func TestStart_Failure(t *testing.T) {
	p := &fakePlatform{caps: fullCaps, immediate: &result{
		err: webotp.NewCredentialError(webotp.ErrNameNotAllowed, "The user dismissed the prompt."),
	}}
	d := &recordingDispatcher{}
	b, buf := newBridge(t, p, d)

	b.Start(context.Background())
	require.NoError(t, b.Close(context.Background()))

	assert.False(t, b.Active())
	assert.Empty(t, d.all())
	assert.Equal(t, 1, p.count())
	assert.Contains(t, buf.String(), webotp.ErrNameNotAllowed)
	assert.Contains(t, buf.String(), "The user dismissed the prompt.")
}

func TestStart_TwiceCancelsPrevious(t *testing.T) {
	p := &fakePlatform{caps: fullCaps, honorCancel: true}
	d := &recordingDispatcher{}
	b, _ := newBridge(t, p, d)
	ctx := context.Background()

	b.Start(ctx)
	p.waitCalls(t, 1)
	first := p.call(0)

	b.Start(ctx)
	p.waitCalls(t, 2)
	second := p.call(1)

	assert.ErrorIs(t, first.ctx.Err(), context.Canceled)
	assert.True(t, second.priorCanceled, "previous request must be cancelled before the next is issued")
	assert.NoError(t, second.ctx.Err())
	assert.True(t, b.Active())

	b.Stop(ctx)
	require.NoError(t, b.Close(ctx))

	assert.False(t, b.Active())
	assert.Empty(t, d.all())
}

func TestStart_StaleContinuationKeepsNewerActive(t *testing.T) {
	p := &fakePlatform{caps: fullCaps}
	d := &recordingDispatcher{}
	b, buf := newBridge(t, p, d)
	ctx := context.Background()

	b.Start(ctx)
	p.waitCalls(t, 1)
	b.Start(ctx)
	p.waitCalls(t, 2)

	p.call(0).result <- result{cred: webotp.Credential{Code: "111111"}}
	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "dropping OTP from aborted request")
	}, time.Second, 5*time.Millisecond)
	assert.True(t, b.Active(), "stale continuation must not reset the newer request")

	p.call(1).result <- result{cred: webotp.Credential{Code: "222222"}}
	require.NoError(t, b.Close(ctx))

	assert.False(t, b.Active())
	events := d.all()
	require.Len(t, events, 1)
	assert.Equal(t, "222222", events[0].OTP)
}

func TestStop_NoHandle(t *testing.T) {
	p := &fakePlatform{caps: fullCaps}
	b, buf := newBridge(t, p, &recordingDispatcher{})

	assert.NotPanics(t, func() { b.Stop(context.Background()) })
	assert.False(t, b.Active())
	assert.Contains(t, buf.String(), "no active controller to abort")
}

func TestStop_CancelsHandle(t *testing.T) {
	p := &fakePlatform{caps: fullCaps, honorCancel: true}
	d := &recordingDispatcher{}
	b, buf := newBridge(t, p, d)
	ctx := context.Background()

	b.Start(ctx)
	p.waitCalls(t, 1)
	require.True(t, b.Active())

	b.Stop(ctx)
	assert.ErrorIs(t, p.call(0).ctx.Err(), context.Canceled)
	assert.False(t, b.Active())

	require.NoError(t, b.Close(ctx))
	assert.Empty(t, d.all())
	assert.Contains(t, buf.String(), "aborting current request")

	buf.Reset()
	b.Stop(ctx)
	assert.Contains(t, buf.String(), "no active controller to abort", "handle is cleared after stop")
}

func TestStop_WithoutCancellationSupport(t *testing.T) {
	caps := fullCaps
	caps.Cancellation = false
	p := &fakePlatform{caps: caps}
	d := &recordingDispatcher{}
	b, buf := newBridge(t, p, d)
	ctx := context.Background()

	b.Start(ctx)
	p.waitCalls(t, 1)
	require.True(t, b.Active())

	b.Stop(ctx)
	assert.False(t, b.Active())
	assert.Contains(t, buf.String(), "no active controller to abort")
	assert.NoError(t, p.call(0).ctx.Err())

	p.call(0).result <- result{cred: webotp.Credential{Code: "4242"}}
	require.NoError(t, b.Close(ctx))

	assert.False(t, b.Active())
	events := d.all()
	require.Len(t, events, 1)
	assert.Equal(t, "4242", events[0].OTP)
}

func TestStart_RequestOutlivesCallerContext(t *testing.T) {
	p := &fakePlatform{caps: fullCaps, honorCancel: true}
	d := &recordingDispatcher{}
	b, _ := newBridge(t, p, d)

	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)
	p.waitCalls(t, 1)
	cancel()

	assert.NoError(t, p.call(0).ctx.Err())
	assert.True(t, b.Active())

	p.call(0).result <- result{cred: webotp.Credential{Code: "987654"}}
	require.NoError(t, b.Close(context.Background()))

	require.Len(t, d.all(), 1)
	assert.Equal(t, "987654", d.all()[0].OTP)
}

func TestStart_GoroutineRefused(t *testing.T) {
	gm := goroutine.NewManager(1)
	require.NoError(t, gm.Wait())

	p := &fakePlatform{caps: fullCaps}
	d := &recordingDispatcher{}
	b, buf := newBridge(t, p, d, webotp.WithGoroutine(gm))

	b.Start(context.Background())

	assert.False(t, b.Active())
	assert.Zero(t, p.count())
	assert.Empty(t, d.all())
	assert.Contains(t, buf.String(), "unexpected exception in start()")
}

func TestStart_CustomEventName(t *testing.T) {
	p := &fakePlatform{caps: fullCaps, immediate: &result{cred: webotp.Credential{Code: "55"}}}
	d := &recordingDispatcher{}
	b, _ := newBridge(t, p, d, webotp.WithEventName("otp-ready"))

	b.Start(context.Background())
	require.NoError(t, b.Close(context.Background()))

	require.Len(t, d.all(), 1)
	assert.Equal(t, "otp-ready", d.all()[0].Name)
	assert.Equal(t, "55", d.all()[0].OTP)
}
