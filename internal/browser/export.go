//go:build js && wasm

// Package browser binds a webotp.Bridge to the page it runs in: the
// credential API, the window event target and the global control functions.
package browser

import (
	"context"
	"syscall/js"

	"github.com/shandysiswandi/webotp/internal/webotp"
)

// Globals names the control functions registered on the global object.
type Globals struct {
	Start string
	Stop  string
}

// DefaultGlobals are the names pages already call.
var DefaultGlobals = Globals{Start: "dzengoStartWebOtp", Stop: "dzengoStopWebOtp"}

// Export registers b's Start and Stop as global functions. The returned func
// removes them and releases the callbacks.
func Export(b *webotp.Bridge, names Globals) func() {
	if names.Start == "" {
		names.Start = DefaultGlobals.Start
	}
	if names.Stop == "" {
		names.Stop = DefaultGlobals.Stop
	}

	start := js.FuncOf(func(js.Value, []js.Value) any {
		b.Start(context.Background())
		return nil
	})
	stop := js.FuncOf(func(js.Value, []js.Value) any {
		b.Stop(context.Background())
		return nil
	})

	global := js.Global()
	global.Set(names.Start, start)
	global.Set(names.Stop, stop)

	return func() {
		global.Delete(names.Start)
		global.Delete(names.Stop)
		start.Release()
		stop.Release()
	}
}
