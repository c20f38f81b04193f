/*
Package jubsdk is a client for the OpenJUB identity and directory service.

# Overview

A Session is bound to one server. It signs a user in, keeps the opaque
token the server hands out, confirms which user the token belongs to and
runs directory lookups, queries and searches on the user's behalf.

	sess, err := jubsdk.Connect(ctx, "openjub.example.edu")
	if err != nil {
		// The session is still usable; the initial status check failed.
		log.Warn("status check failed", "err", err)
	}

	if _, err := sess.SignIn(ctx, "jdoe", password); err != nil {
		return err
	}
	if _, err := sess.RefreshStatus(ctx); err != nil {
		return err
	}

	me, err := sess.GetMe(ctx, "fullName", "email")

Servers given without a scheme are reached over https.

# Session states

A Session is always in one of three states:

  - Anonymous: no token.
  - TokenOnly: a token the server has not yet tied to a user. SignIn
    leaves the session here.
  - Identified: a token plus the user the server confirmed for it.
    RefreshStatus moves a session here.

RefreshStatus clears the session whenever the server reports no user.
Responses that change state are applied in request order, so a slow status
reply cannot overwrite the result of a sign-out issued after it.

# Errors

Any status other than 200 is a *ProtocolError carrying the server's
"error" message. A request that never got a response is a *NetworkError,
which matches ErrNetworkFailure:

	if errors.Is(err, jubsdk.ErrNetworkFailure) {
		// the server was not reached
	}

A body that is not JSON is not an error. It is returned as text in
Response.Payload.

When an authenticated request fails with a status, the session runs one
RefreshStatus before returning the original error, so an expired token is
noticed and dropped. Nothing is ever retried.

# Paging

Query and Search return a PagedResult. The server decides where the next
and previous pages start; Next and Prev replay the same expression with
the parameters taken from the server's links:

	page, err := sess.Search(ctx, "smith", jubsdk.RequestOptions{Limit: jubsdk.Int(25)})
	for err == nil {
		for _, u := range page.Items() {
			fmt.Println(u.Get("username").String())
		}
		if !page.HasNext() {
			break
		}
		page, err = page.Next(ctx)
	}

# Callbacks

Every method blocks and honours its context. Async runs any of them on a
separate goroutine and delivers the result to a callback exactly once:

	jubsdk.Async(ctx, sess.IsOnCampus, func(resp *jubsdk.Response, err error) {
		...
	})

# Environments

Built for js/wasm, a Session talks through the browser's fetch API, keeps
its token in the JUB_token cookie and supports Authenticate through a login
popup. Elsewhere it uses net/http, keeps the token in memory unless another
TokenStore is configured, and Authenticate returns
ErrInteractiveUnsupported.
*/
package jubsdk
