package simulator

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"github.com/shandysiswandi/webotp/internal/webotp"
)

// Fanout dispatches every event to each of its dispatchers in order. A
// failing dispatcher does not stop the others.
type Fanout []webotp.Dispatcher

// NewFanout drops nil dispatchers.
func NewFanout(ds ...webotp.Dispatcher) Fanout {
	return lo.Filter(ds, func(d webotp.Dispatcher, _ int) bool { return d != nil })
}

// Dispatch implements webotp.Dispatcher.
func (f Fanout) Dispatch(ctx context.Context, evt webotp.Event) error {
	return errors.Join(lo.Map(f, func(d webotp.Dispatcher, _ int) error {
		return d.Dispatch(ctx, evt)
	})...)
}
