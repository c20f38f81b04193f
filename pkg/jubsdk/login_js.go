//go:build js && wasm

package jubsdk

import (
	"context"
	"errors"
	"sync"
	"syscall/js"
)

const popupFeatures = "width=500, height=400, resizeable=no, toolbar=no, scrollbar=no, location=no"

// PopupSurface opens the login page in a popup window and relays window
// "message" events.
type PopupSurface struct{}

func NewPopupSurface() *PopupSurface { return &PopupSurface{} }

func (PopupSurface) Open(ctx context.Context, loginURL string) (<-chan Message, func(), error) {
	win := js.Global().Get("window")
	if win.IsUndefined() {
		return nil, nil, errors.New("jubsdk: no window")
	}

	msgs := make(chan Message, 8)
	done := make(chan struct{})

	handler := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		ev := args[0]

		var data any
		if d := ev.Get("data"); d.Type() == js.TypeString {
			data = d.String()
		} else {
			data = js.Global().Get("JSON").Call("stringify", d).String()
		}

		select {
		case msgs <- Message{Origin: ev.Get("origin").String(), Data: data}:
		case <-done:
		default:
		}
		return nil
	})
	win.Call("addEventListener", "message", handler)

	popup := win.Call("open", loginURL, "_blank", popupFeatures)
	if popup.IsNull() || popup.IsUndefined() {
		win.Call("removeEventListener", "message", handler)
		handler.Release()
		return nil, nil, errors.New("jubsdk: popup blocked")
	}

	var once sync.Once
	closeFn := func() {
		once.Do(func() {
			close(done)
			win.Call("removeEventListener", "message", handler)
			handler.Release()
		})
	}
	return msgs, closeFn, nil
}
