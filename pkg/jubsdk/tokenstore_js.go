//go:build js && wasm

package jubsdk

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"syscall/js"
	"time"
)

// CookieName is the browser cookie holding the session token.
const CookieName = "JUB_token"

// cookieTTL is how long a saved token cookie lives.
const cookieTTL = 24 * time.Hour

// CookieStore keeps the token in document.cookie. A page only ever talks to
// one server, so the server key is ignored.
type CookieStore struct{}

func NewCookieStore() *CookieStore { return &CookieStore{} }

func document() (js.Value, error) {
	doc := js.Global().Get("document")
	if doc.IsUndefined() || doc.IsNull() {
		return js.Value{}, errors.New("jubsdk: no document")
	}
	return doc, nil
}

func (CookieStore) Load(_ context.Context, _ string) (string, error) {
	doc, err := document()
	if err != nil {
		return "", err
	}

	for _, part := range strings.Split(doc.Get("cookie").String(), ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && name == CookieName {
			return value, nil
		}
	}
	return "", nil
}

func (CookieStore) Save(_ context.Context, _ string, token string) error {
	doc, err := document()
	if err != nil {
		return err
	}

	expires := time.Now().Add(cookieTTL).UTC().Format(http.TimeFormat)
	doc.Set("cookie", CookieName+"="+token+"; expires="+expires+"; path=/")
	return nil
}

func (CookieStore) Delete(_ context.Context, _ string) error {
	doc, err := document()
	if err != nil {
		return err
	}

	doc.Set("cookie", CookieName+"=; expires=Thu, 01 Jan 1970 00:00:00 UTC; path=/")
	return nil
}
