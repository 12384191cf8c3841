package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/webotp/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

var (
	// ErrClosed is returned by Go once Wait has been called.
	ErrClosed = errors.New("goroutine: manager is closed")
	// ErrLimitReached is returned by Go when every slot is busy.
	ErrLimitReached = errors.New("goroutine: maximum goroutine limit reached")
)

// Manager runs functions in goroutines with a configurable concurrency limit.
//
// It collects errors returned by tasks and can be waited on using Wait.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      *sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		wg:   &sync.WaitGroup{},
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go schedules f in a goroutine if capacity is available.
//
// The task is refused with ErrClosed after Wait, or ErrLimitReached when the
// manager is saturated. Panics inside f are recovered and logged.
func (g *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) error {
	if g == nil {
		return ErrClosed
	}

	g.stateMu.RLock()
	if g.closed {
		g.stateMu.RUnlock()
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping new goroutine")
		return ErrClosed
	}

	select {
	case g.sema <- struct{}{}:
		g.wg.Go(func() {
			defer func() {
				<-g.sema

				if rvr := recover(); rvr != nil {
					stack := debug.Stack()
					paths := stacktrace.InternalPaths(stack)
					if len(paths) == 0 {
						slog.ErrorContext(pCtx, "panic occurred in goroutine", "because", rvr, "stack", string(stack))
					} else {
						slog.ErrorContext(pCtx, "panic occurred in goroutine", "because", rvr, "stack", paths)
					}
				}
			}()

			select {
			case <-pCtx.Done():
				slog.WarnContext(pCtx, "goroutine canceled", "because", pCtx.Err())
			default:
				if err := f(pCtx); err != nil {
					g.mu.Lock()
					g.errs = append(g.errs, err)
					g.mu.Unlock()
				}
			}
		})
		g.stateMu.RUnlock()
		return nil

	default:
		g.stateMu.RUnlock()
		slog.WarnContext(pCtx, "maximum goroutine limit reached, failed to start new goroutine")
		return ErrLimitReached
	}
}

// Wait closes the manager, blocks until all scheduled goroutines finish and
// returns any collected errors. It is safe to call more than once.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
