package simulator

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shandysiswandi/webotp/internal/pkg/clock"
	"github.com/shandysiswandi/webotp/internal/pkg/smscode"
	"github.com/shandysiswandi/webotp/internal/pkg/uid"
	"github.com/shandysiswandi/webotp/internal/webotp"
)

var (
	// ErrNoPendingRequest is returned when an SMS or rejection arrives while no
	// credential request is waiting.
	ErrNoPendingRequest = errors.New("simulator: no pending credential request")
	// ErrUnknownErrorName is returned by Reject for a name outside the
	// DOMException set a browser would report.
	ErrUnknownErrorName = errors.New("simulator: unknown error name")
)

// PlatformConfig describes the simulated browser page.
type PlatformConfig struct {
	// Protocol is the page protocol, "https:" or "http:".
	Protocol string
	// Host is the page host including port. Incoming SMS must be bound to it.
	Host string
	// OTPCredential toggles the one-time-password credential type.
	OTPCredential bool
	// CredentialsAPI toggles the credential retrieval function.
	CredentialsAPI bool
	// Cancellation toggles request cancellation support.
	Cancellation bool
	// Timeout rejects a request with TimeoutError once elapsed. Zero waits
	// forever.
	Timeout time.Duration
}

// Delivery reports which pending request an SMS resolved.
type Delivery struct {
	RequestID string `json:"request_id"`
	Origin    string `json:"origin"`
	Embedded  string `json:"embedded,omitempty"`
	Code      string `json:"code"`
	// Waited is how long the request waited for the SMS.
	Waited time.Duration `json:"-"`
}

type outcome struct {
	cred webotp.Credential
	err  error
}

type pending struct {
	id     string
	since  time.Time
	ctx    context.Context
	result chan outcome
}

// aborted reports whether the requester has gone away. Only meaningful when
// the page supports cancellation.
func (w *pending) aborted() bool {
	return w.ctx != nil && w.ctx.Err() != nil
}

// Platform is a webotp.Platform whose requests are resolved by SMS texts
// delivered through Deliver, or rejected through Reject.
type Platform struct {
	cfg   PlatformConfig
	ids   uid.StringID
	clock clock.Clocker
	log   *slog.Logger
	caps  webotp.Capabilities

	mu      sync.Mutex
	waiting []*pending
}

// NewPlatform builds a Platform. A nil ids falls back to UUIDs and a nil clk
// to the system clock.
func NewPlatform(cfg PlatformConfig, ids uid.StringID, clk clock.Clocker) *Platform {
	if ids == nil {
		ids = uid.NewUUID()
	}
	if clk == nil {
		clk = clock.New()
	}
	if cfg.Protocol == "" {
		cfg.Protocol = "https:"
	}
	cfg.Host = strings.ToLower(cfg.Host)

	return &Platform{
		cfg:   cfg,
		ids:   ids,
		clock: clk,
		log:   slog.Default().With("component", "simulator.platform"),
		caps: webotp.Capabilities{
			OTPCredential:  cfg.OTPCredential,
			CredentialsAPI: cfg.CredentialsAPI,
			SecureContext:  secureContext(cfg.Protocol, cfg.Host),
			Cancellation:   cfg.Cancellation,
			Protocol:       cfg.Protocol,
			Host:           cfg.Host,
		},
	}
}

// secureContext follows the browser rule: https pages and loopback hosts are
// potentially trustworthy.
func secureContext(protocol, host string) bool {
	if protocol == "https:" {
		return true
	}
	name := host
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		name = host[:i]
	}
	return name == "localhost" || strings.HasSuffix(name, ".localhost") || name == "127.0.0.1" || name == "[::1]"
}

// Capabilities implements webotp.Platform.
func (p *Platform) Capabilities() webotp.Capabilities {
	return p.caps
}

// GetCredential implements webotp.Platform. It blocks until an SMS for this
// page arrives, the request is rejected, it times out, or ctx is cancelled
// on a platform that supports cancellation.
func (p *Platform) GetCredential(ctx context.Context, req webotp.Request) (webotp.Credential, error) {
	if !p.caps.CredentialsAPI || !p.caps.OTPCredential {
		return webotp.Credential{}, webotp.NewCredentialError(webotp.ErrNameNotSupported, "one-time-password credentials are not available")
	}
	if !slices.Contains(req.Transports, webotp.TransportSMS) {
		return webotp.Credential{}, webotp.NewCredentialError(webotp.ErrNameNotSupported, "only the sms transport is supported")
	}
	if !p.caps.SecureContext {
		return webotp.Credential{}, webotp.NewCredentialError(webotp.ErrNameNotAllowed, "the page is not a secure context")
	}

	w := &pending{id: p.ids.Generate(), since: p.clock.Now(), result: make(chan outcome, 1)}
	if p.caps.Cancellation {
		w.ctx = ctx
	}
	p.mu.Lock()
	p.waiting = append(p.waiting, w)
	p.mu.Unlock()
	p.log.InfoContext(ctx, "credential request pending", "request_id", w.id)

	if p.caps.Cancellation {
		stop := context.AfterFunc(ctx, func() { p.remove(w) })
		defer stop()
	}

	var timeout <-chan time.Time
	if p.cfg.Timeout > 0 {
		timer := time.NewTimer(p.cfg.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var done <-chan struct{}
	if p.caps.Cancellation {
		done = ctx.Done()
	}

	select {
	case out := <-w.result:
		return out.cred, out.err
	case <-done:
		p.remove(w)
		return webotp.Credential{}, webotp.NewCredentialError(webotp.ErrNameAbort, "the request was aborted")
	case <-timeout:
		p.remove(w)
		return webotp.Credential{}, webotp.NewCredentialError(webotp.ErrNameTimeout, "no SMS received in time")
	}
}

// remove drops w unless a resolver already took it, in which case the
// buffered outcome is simply never read.
func (p *Platform) remove(w *pending) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waiting = slices.DeleteFunc(p.waiting, func(x *pending) bool { return x == w })
}

// take pops the oldest waiting request, discarding aborted ones on the way.
func (p *Platform) take() (*pending, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.waiting) > 0 {
		w := p.waiting[0]
		p.waiting = p.waiting[1:]
		if !w.aborted() {
			return w, true
		}
	}
	return nil, false
}

// Close rejects every waiting request with AbortError, the way closing the
// page settles its pending promises. It always returns nil.
func (p *Platform) Close() error {
	p.mu.Lock()
	waiting := p.waiting
	p.waiting = nil
	p.mu.Unlock()

	for _, w := range waiting {
		w.result <- outcome{err: webotp.NewCredentialError(webotp.ErrNameAbort, "the page was closed")}
	}
	return nil
}

// Pending reports how many requests are waiting.
func (p *Platform) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, w := range p.waiting {
		if !w.aborted() {
			n++
		}
	}
	return n
}

// Deliver hands an SMS text to the oldest waiting request. The text must end
// with an origin binding for this page's host.
func (p *Platform) Deliver(ctx context.Context, text string) (Delivery, error) {
	msg, err := smscode.Parse(text)
	if err != nil {
		return Delivery{}, err
	}
	if err := msg.Match(p.cfg.Host); err != nil {
		p.log.InfoContext(ctx, "sms ignored, origin mismatch", "origin", msg.Origin, "embedded", msg.Embedded, "host", p.cfg.Host)
		return Delivery{}, err
	}

	w, ok := p.take()
	if !ok {
		return Delivery{}, ErrNoPendingRequest
	}

	waited := p.clock.Now().Sub(w.since)
	w.result <- outcome{cred: webotp.Credential{Code: msg.Code, Transport: webotp.TransportSMS}}
	p.log.InfoContext(ctx, "sms delivered", "request_id", w.id, "code", webotp.MaskCode(msg.Code), "waited_ms", waited.Milliseconds())

	return Delivery{RequestID: w.id, Origin: msg.Origin, Embedded: msg.Embedded, Code: msg.Code, Waited: waited}, nil
}

var rejectNames = []string{
	webotp.ErrNameAbort,
	webotp.ErrNameNotAllowed,
	webotp.ErrNameInvalidState,
	webotp.ErrNameNotSupported,
	webotp.ErrNameTimeout,
	webotp.ErrNameUnknown,
}

// RejectNames lists the names accepted by Reject.
func RejectNames() []string {
	return slices.Clone(rejectNames)
}

// Reject fails the oldest waiting request with the named error.
func (p *Platform) Reject(ctx context.Context, name, message string) (string, error) {
	if !slices.Contains(rejectNames, name) {
		return "", ErrUnknownErrorName
	}

	w, ok := p.take()
	if !ok {
		return "", ErrNoPendingRequest
	}

	w.result <- outcome{err: webotp.NewCredentialError(name, message)}
	p.log.InfoContext(ctx, "credential request rejected", "request_id", w.id, "name", name)
	return w.id, nil
}
