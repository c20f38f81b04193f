//go:build js && wasm

package jubsdk

import (
	"log/slog"
	"net/http"
)

// NewFetchTransport returns a transport that goes through the browser's
// fetch API as a cross-origin request.
func NewFetchTransport(client *http.Client, logger *slog.Logger) *HTTPTransport {
	t := NewHTTPTransport(client, logger)
	t.decorate = func(req *http.Request) {
		req.Header.Set("js.fetch:mode", "cors")
		req.Header.Set("js.fetch:credentials", "omit")
	}
	return t
}

func defaultTransport(client *http.Client, logger *slog.Logger) Transport {
	return NewFetchTransport(client, logger)
}

func defaultTokenStore() TokenStore {
	return NewCookieStore()
}

func defaultLoginSurface() LoginSurface {
	return NewPopupSurface()
}
