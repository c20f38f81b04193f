package jubsdk

import (
	"net/url"
	"strings"
)

// Params is an ordered string mapping used for GET query parameters.
// The zero value is empty and ready to use.
type Params struct {
	keys []string
	vals map[string]string
}

// ParamsOf builds Params from alternating key/value pairs. A trailing key
// without a value is ignored.
func ParamsOf(kv ...string) Params {
	var p Params
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	return p
}

// Set inserts or overwrites key. Overwriting keeps the original position.
func (p *Params) Set(key, value string) {
	if p.vals == nil {
		p.vals = make(map[string]string)
	}
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
}

// setFirst inserts key only if it has not been seen.
func (p *Params) setFirst(key, value string) {
	if _, ok := p.vals[key]; ok {
		return
	}
	p.Set(key, value)
}

// Get returns the value stored under key.
func (p Params) Get(key string) (string, bool) {
	v, ok := p.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.vals[key]
	return ok
}

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

func (p Params) Len() int { return len(p.keys) }

// Map returns an unordered copy.
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p.vals))
	for k, v := range p.vals {
		out[k] = v
	}
	return out
}

const (
	httpPrefix  = "http://"
	httpsPrefix = "https://"
)

// JoinURL joins a server base and a path into a canonical absolute URL.
// A base without an http:// or https:// prefix gets https://. One trailing
// slash is stripped from base and path is given a leading slash. An empty
// path returns the prefixed base untouched, so JoinURL(JoinURL(b, p), "")
// equals JoinURL(b, p).
func JoinURL(base, path string) string {
	if !strings.HasPrefix(base, httpsPrefix) && !strings.HasPrefix(base, httpPrefix) {
		base = httpsPrefix + base
	}
	if path == "" {
		return base
	}

	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// ExtractParams returns the query parameters embedded in rawURL. Everything
// after the first "?" is split on "&", each entry on its first "=". Names and
// values are percent-decoded. When a name repeats, the first occurrence wins.
func ExtractParams(rawURL string) Params {
	var p Params

	_, query, ok := strings.Cut(rawURL, "?")
	if !ok {
		return p
	}

	for _, entry := range strings.Split(query, "&") {
		name, value, _ := strings.Cut(entry, "=")
		p.setFirst(unescape(name), unescape(value))
	}
	return p
}

// BuildGetURL rebuilds rawURL with the explicit parameters as its query.
//
// Parameters already embedded in rawURL only contribute their position: a
// key keeps its original slot when explicit also sets it, and keys that
// explicit does not name are dropped. New explicit keys follow in explicit
// order. Stored next/prev links depend on this exact shape.
func BuildGetURL(rawURL string, explicit Params) string {
	seeded := ExtractParams(rawURL)
	base, _, _ := strings.Cut(rawURL, "?")

	merged := seeded
	for _, k := range explicit.keys {
		merged.Set(k, explicit.vals[k])
	}

	var b strings.Builder
	for _, k := range merged.keys {
		v, ok := explicit.vals[k]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EncodeComponent(k))
		b.WriteByte('=')
		b.WriteString(EncodeComponent(v))
	}

	if b.Len() == 0 {
		return base
	}
	return base + "?" + b.String()
}

// componentUnreserved lists the characters url.QueryEscape encodes but a
// URI component leaves alone.
var componentUnreserved = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s as a single URI component. Only
// A-Z a-z 0-9 and - _ . ! ~ * ' ( ) are left literal; a space becomes %20.
func EncodeComponent(s string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	return componentUnreserved.Replace(escaped)
}

// unescape percent-decodes s, keeping the raw text when it is malformed.
func unescape(s string) string {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}
