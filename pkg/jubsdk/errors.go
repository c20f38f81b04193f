package jubsdk

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetworkFailure matches every *NetworkError.
	ErrNetworkFailure = errors.New("jubsdk: network failure")

	// ErrInteractiveUnsupported is returned by Authenticate when the session
	// has no LoginSurface.
	ErrInteractiveUnsupported = errors.New("jubsdk: interactive login not supported in this environment")

	// ErrNoNextPage and ErrNoPrevPage are returned when a page carries no
	// continuation link in that direction.
	ErrNoNextPage = errors.New("jubsdk: no next page")
	ErrNoPrevPage = errors.New("jubsdk: no previous page")

	// ErrNoToken is returned by Authenticate when the login message carried
	// no usable token.
	ErrNoToken = errors.New("jubsdk: login message has no token")

	// ErrLoginClosed is returned by Authenticate when the login surface
	// stops delivering messages before a trusted one arrives.
	ErrLoginClosed = errors.New("jubsdk: login surface closed")
)

// ProtocolError is a response that arrived with a status other than 200.
type ProtocolError struct {
	StatusCode int

	// Message is the body's "error" field, or a generic status text.
	Message string

	Response *Response
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("jubsdk: %s (status %d)", e.Message, e.StatusCode)
}

// NetworkError is returned when no response was received at all.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("jubsdk: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetworkFailure }

// protocolError converts a non-200 response into a *ProtocolError. It returns
// nil for 200.
func protocolError(resp *Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	msg := resp.Get("error")
	if msg.Exists() && msg.String() != "" {
		return &ProtocolError{StatusCode: resp.StatusCode, Message: msg.String(), Response: resp}
	}

	return &ProtocolError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Response:   resp,
	}
}

// IsStatus reports whether err is a *ProtocolError with the given status.
func IsStatus(err error, status int) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.StatusCode == status
}
