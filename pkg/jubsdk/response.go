package jubsdk

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Response is a completed HTTP exchange. Any status code is a Response;
// only a failure to exchange at all is an error.
type Response struct {
	StatusCode int
	Body       []byte

	// Payload is the decoded JSON body, or the raw body as a string when it
	// is not valid JSON.
	Payload any

	// RequestID echoes the X-Request-ID sent with the request.
	RequestID string

	json bool
}

// NewResponse builds a Response from a status and raw body. A body that does
// not parse as JSON is kept as text rather than reported.
func NewResponse(status int, body []byte, requestID string) *Response {
	r := &Response{StatusCode: status, Body: body, RequestID: requestID}

	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		r.Payload = v
		r.json = true
	} else {
		r.Payload = string(body)
	}
	return r
}

// IsJSON reports whether the body parsed as JSON.
func (r *Response) IsJSON() bool { return r.json }

// Get looks up a gjson path in the body. Non-JSON bodies yield an empty
// result.
func (r *Response) Get(path string) gjson.Result {
	if !r.json {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Body, path)
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// truthy mirrors a loose boolean test on a JSON value: missing, null,
// false, 0 and "" are all false.
func truthy(res gjson.Result) bool {
	switch res.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return res.Float() != 0
	case gjson.String:
		return res.Str != ""
	default:
		return res.Exists()
	}
}
