//go:build js && wasm

package browser

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/samber/lo"
	"github.com/shandysiswandi/webotp/internal/webotp"
)

// Platform implements webotp.Platform over navigator.credentials.
type Platform struct {
	window js.Value
}

// NewPlatform binds to the global window.
func NewPlatform() *Platform {
	return &Platform{window: js.Global()}
}

func (p *Platform) credentials() js.Value {
	nav := p.window.Get("navigator")
	if !nav.Truthy() {
		return js.Undefined()
	}
	return nav.Get("credentials")
}

// Capabilities implements webotp.Platform.
func (p *Platform) Capabilities() webotp.Capabilities {
	creds := p.credentials()
	loc := p.window.Get("location")

	caps := webotp.Capabilities{
		OTPCredential:  js.Global().Get("Reflect").Call("has", p.window, "OTPCredential").Bool(),
		CredentialsAPI: creds.Truthy() && creds.Get("get").Type() == js.TypeFunction,
		SecureContext:  p.window.Get("isSecureContext").Truthy(),
		Cancellation:   p.window.Get("AbortController").Type() == js.TypeFunction,
	}
	if loc.Truthy() {
		caps.Protocol = loc.Get("protocol").String()
		caps.Host = loc.Get("host").String()
	}
	return caps
}

type settled struct {
	cred webotp.Credential
	err  error
}

// GetCredential implements webotp.Platform. Cancelling ctx calls abort on the
// request's AbortController; the promise then rejects with AbortError.
func (p *Platform) GetCredential(ctx context.Context, req webotp.Request) (cred webotp.Credential, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("browser: credentials get: %v", rvr)
		}
	}()

	opts := map[string]any{
		"otp": map[string]any{
			"transport": lo.Map(req.Transports, func(t string, _ int) any { return t }),
		},
	}

	var controller js.Value
	if ctor := p.window.Get("AbortController"); ctor.Type() == js.TypeFunction {
		controller = ctor.New()
		opts["signal"] = controller.Get("signal")
	}

	done := make(chan settled, 1)
	onResolve := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 || !args[0].Truthy() {
			done <- settled{err: webotp.NewCredentialError("TypeError", "credential is null")}
			return nil
		}
		done <- settled{cred: webotp.Credential{
			Code:      args[0].Get("code").String(),
			Transport: webotp.TransportSMS,
		}}
		return nil
	})
	defer onResolve.Release()

	onReject := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- settled{err: domError(args)}
		return nil
	})
	defer onReject.Release()

	p.credentials().Call("get", js.ValueOf(opts)).Call("then", onResolve, onReject)

	select {
	case out := <-done:
		return out.cred, out.err
	case <-ctx.Done():
		if controller.Truthy() {
			controller.Call("abort")
		}
		out := <-done
		return out.cred, out.err
	}
}

func domError(args []js.Value) error {
	if len(args) == 0 || !args[0].Truthy() {
		return webotp.NewCredentialError(webotp.ErrNameUnknown, "")
	}
	v := args[0]
	if v.Type() != js.TypeObject {
		return webotp.NewCredentialError(webotp.ErrNameUnknown, v.String())
	}

	name := v.Get("name")
	msg := v.Get("message")
	cerr := webotp.NewCredentialError(webotp.ErrNameUnknown, "")
	if name.Type() == js.TypeString {
		cerr.Name = name.String()
	}
	if msg.Type() == js.TypeString {
		cerr.Message = msg.String()
	}
	return cerr
}
