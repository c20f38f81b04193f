package jubsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/openjub/pkg/idx"
	"github.com/aussiebroadwan/openjub/pkg/slogx"
)

// Transport performs one HTTP exchange. GET carries no body; POST carries
// body encoded as JSON. The only error a Transport returns is *NetworkError.
type Transport interface {
	Do(ctx context.Context, method, url string, body any) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, method, url string, body any) (*Response, error)

func (f TransportFunc) Do(ctx context.Context, method, url string, body any) (*Response, error) {
	return f(ctx, method, url, body)
}

// HTTPTransport is a Transport backed by net/http.
type HTTPTransport struct {
	client *http.Client

	// decorate adjusts each request before it is sent.
	decorate func(*http.Request)
}

// NewHTTPTransport returns a transport using client, or a client with no
// timeout when nil. Outbound requests are logged at debug level.
func NewHTTPTransport(client *http.Client, logger *slog.Logger) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	wrapped := *client
	wrapped.Transport = slogx.RoundTripper(client.Transport, logger)

	return &HTTPTransport{client: &wrapped}
}

func (t *HTTPTransport) Do(ctx context.Context, method, url string, body any) (*Response, error) {
	fail := func(err error) (*Response, error) {
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}

	var reader io.Reader
	if method != http.MethodGet && body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fail(fmt.Errorf("encode body: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fail(fmt.Errorf("create request: %w", err))
	}

	reqID := idx.New().String()
	req.Header.Set(slogx.RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.decorate != nil {
		t.decorate(req)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("read body: %w", err))
	}

	return NewResponse(resp.StatusCode, raw, reqID), nil
}
