package jubsdk

import (
	"context"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind selects the directory operation a PagedResult replays.
type Kind string

const (
	KindQuery  Kind = "query"
	KindSearch Kind = "search"
)

// RequestOptions are the optional projection and paging parameters.
// An empty Fields slice means all fields.
type RequestOptions struct {
	Fields []string
	Limit  *int
	Skip   *int
}

// Int returns a pointer to v, for RequestOptions.Limit and Skip.
func Int(v int) *int { return &v }

func (o RequestOptions) params() Params {
	var p Params
	if len(o.Fields) > 0 {
		p.Set("fields", strings.Join(o.Fields, ","))
	}
	if o.Limit != nil {
		p.Set("limit", strconv.Itoa(*o.Limit))
	}
	if o.Skip != nil {
		p.Set("skip", strconv.Itoa(*o.Skip))
	}
	return p
}

// Query runs a structured directory query and returns its first page.
func (s *Session) Query(ctx context.Context, expr string, opts RequestOptions) (*PagedResult, error) {
	return s.list(ctx, KindQuery, expr, opts)
}

// Search runs a free-text directory search and returns its first page.
func (s *Session) Search(ctx context.Context, expr string, opts RequestOptions) (*PagedResult, error) {
	return s.list(ctx, KindSearch, expr, opts)
}

func (s *Session) list(ctx context.Context, kind Kind, expr string, opts RequestOptions) (*PagedResult, error) {
	path := "/" + string(kind) + "/" + EncodeComponent(expr)

	resp, err := s.authGet(ctx, path, s.withToken(opts.params()))
	if err != nil {
		return nil, err
	}

	return newPagedResult(s, kind, expr, resp), nil
}

// PagedResult is one page of query or search results. It is immutable;
// Next and Prev return new pages and leave this one as it was.
type PagedResult struct {
	session *Session
	kind    Kind
	expr    string
	items   []gjson.Result
	resp    *Response
}

func newPagedResult(s *Session, kind Kind, expr string, resp *Response) *PagedResult {
	return &PagedResult{
		session: s,
		kind:    kind,
		expr:    expr,
		items:   resp.Get("data").Array(),
		resp:    resp,
	}
}

func (r *PagedResult) Kind() Kind { return r.kind }

// Expression returns the original query or search text.
func (r *PagedResult) Expression() string { return r.expr }

// Items returns the records on this page.
func (r *PagedResult) Items() []gjson.Result {
	return append([]gjson.Result(nil), r.items...)
}

// Data returns the page's records decoded as generic JSON values.
func (r *PagedResult) Data() []any {
	out := make([]any, len(r.items))
	for i, it := range r.items {
		out[i] = it.Value()
	}
	return out
}

// Response returns the full response this page was built from.
func (r *PagedResult) Response() *Response { return r.resp }

func (r *PagedResult) HasNext() bool { return r.link("next") != "" }
func (r *PagedResult) HasPrev() bool { return r.link("prev") != "" }

// Next fetches the page the server linked as "next".
func (r *PagedResult) Next(ctx context.Context) (*PagedResult, error) {
	link := r.link("next")
	if link == "" {
		return nil, ErrNoNextPage
	}
	return r.session.list(ctx, r.kind, r.expr, DecodeLink(link))
}

// Prev fetches the page the server linked as "prev".
func (r *PagedResult) Prev(ctx context.Context) (*PagedResult, error) {
	link := r.link("prev")
	if link == "" {
		return nil, ErrNoPrevPage
	}
	return r.session.list(ctx, r.kind, r.expr, DecodeLink(link))
}

func (r *PagedResult) link(name string) string {
	return r.resp.Get(name).String()
}

// DecodeLink reads paging parameters out of a server continuation link.
// fields is split on ",". limit and skip are read as leading integers and
// kept only when positive, so an explicit 0 comes back absent.
func DecodeLink(link string) RequestOptions {
	p := ExtractParams(link)

	var opts RequestOptions
	if f, ok := p.Get("fields"); ok && f != "" {
		opts.Fields = strings.Split(f, ",")
	}
	if v, ok := p.Get("limit"); ok {
		opts.Limit = positiveInt(v)
	}
	if v, ok := p.Get("skip"); ok {
		opts.Skip = positiveInt(v)
	}
	return opts
}

// positiveInt parses an optionally signed run of leading digits after any
// leading whitespace, ignoring whatever follows. It returns nil unless the
// result is positive.
func positiveInt(s string) *int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
