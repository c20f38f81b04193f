//go:build !(js && wasm)

package jubsdk

import (
	"log/slog"
	"net/http"
)

func defaultTransport(client *http.Client, logger *slog.Logger) Transport {
	return NewHTTPTransport(client, logger)
}

func defaultTokenStore() TokenStore {
	return NewMemoryStore()
}

// Outside the browser there is no window to host the login page.
func defaultLoginSurface() LoginSurface {
	return nil
}
