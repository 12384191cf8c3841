//go:build js && wasm

package browser

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/shandysiswandi/webotp/internal/webotp"
)

// ErrNoCustomEvent is returned when the page has no CustomEvent constructor.
var ErrNoCustomEvent = errors.New("browser: CustomEvent is not available")

// Dispatcher fires CustomEvent(evt.Name, {detail: {otp}}) on window.
type Dispatcher struct {
	window js.Value
}

// NewDispatcher binds to the global window.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{window: js.Global()}
}

// Dispatch implements webotp.Dispatcher.
func (d *Dispatcher) Dispatch(_ context.Context, evt webotp.Event) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("browser: dispatch %s: %v", evt.Name, rvr)
		}
	}()

	ctor := d.window.Get("CustomEvent")
	if ctor.Type() != js.TypeFunction {
		return ErrNoCustomEvent
	}

	e := ctor.New(evt.Name, js.ValueOf(map[string]any{
		"detail": map[string]any{"otp": evt.OTP},
	}))
	d.window.Call("dispatchEvent", e)
	return nil
}
