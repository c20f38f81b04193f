package jubsdk

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// LoginPath is the server page that performs interactive sign-in.
const LoginPath = "/view/login"

// Message is one cross-context message delivered to a login surface.
type Message struct {
	Origin string

	// Data is either a JSON string or an already decoded object.
	Data any
}

// LoginSurface opens an out-of-band login page and streams the messages it
// posts back. The caller invokes closeFn exactly once when done listening.
type LoginSurface interface {
	Open(ctx context.Context, loginURL string) (msgs <-chan Message, closeFn func(), err error)
}

// messageToken pulls the "token" field out of a login message payload.
func messageToken(data any) (string, bool) {
	var raw string
	switch v := data.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		buf, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		raw = string(buf)
	}

	if !gjson.Valid(raw) {
		return "", false
	}
	tok := gjson.Get(raw, "token")
	if !tok.Exists() || tok.Type != gjson.String || strings.TrimSpace(tok.Str) == "" {
		return "", false
	}
	return tok.Str, true
}
