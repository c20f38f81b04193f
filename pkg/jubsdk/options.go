package jubsdk

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	transport  Transport
	httpClient *http.Client
	store      TokenStore
	logger     *slog.Logger
	limiter    *rate.Limiter
	surface    LoginSurface
	surfaceSet bool
}

// WithTransport replaces the environment's default transport.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithHTTPClient sets the client used by the default transport. Ignored
// when WithTransport is also given.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTokenStore sets where the session token is persisted.
func WithTokenStore(s TokenStore) Option {
	return func(o *options) { o.store = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRateLimit makes the session wait for a token from a shared bucket
// before every request. Requests are delayed, never dropped or retried.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(o *options) { o.limiter = rate.NewLimiter(r, burst) }
}

// WithLoginSurface sets the surface used by Authenticate. Passing nil
// disables interactive login.
func WithLoginSurface(s LoginSurface) Option {
	return func(o *options) {
		o.surface = s
		o.surfaceSet = true
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.transport == nil {
		o.transport = defaultTransport(o.httpClient, o.logger)
	}
	if o.store == nil {
		o.store = defaultTokenStore()
	}
	if !o.surfaceSet {
		o.surface = defaultLoginSurface()
	}
	return o
}
