package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/openjub/internal/jubmock/domain"
	"github.com/aussiebroadwan/openjub/internal/jubmock/service"
	"github.com/aussiebroadwan/openjub/pkg/httpx"
	"github.com/aussiebroadwan/openjub/pkg/jubsdk"
)

const (
	KindQuery  = "query"
	KindSearch = "search"

	DefaultLimit = 25
	MaxLimit     = 100
)

// ListHandler serves /query/{expr} and /search/{expr}.
type ListHandler struct {
	Kind      string
	Directory *service.DirectoryService
	Tokens    *service.TokenService
	PublicURL string
}

type listResponse struct {
	Data  []map[string]any `json:"data"`
	Count int              `json:"count"`
	Next  string           `json:"next,omitempty"`
	Prev  string           `json:"prev,omitempty"`
}

func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, h.Tokens); !ok {
		return
	}

	expr := r.PathValue("expr")
	fields := parseFields(r)
	limit := intParam(r, "limit", DefaultLimit)
	limit = max(1, min(limit, MaxLimit))
	skip := max(0, intParam(r, "skip", 0))

	var users []domain.User
	if h.Kind == KindSearch {
		users = h.Directory.Search(r.Context(), expr)
	} else {
		users = h.Directory.Query(r.Context(), expr)
	}

	page := service.Paginate(users, limit, skip)

	resp := listResponse{
		Data:  make([]map[string]any, 0, len(page.Users)),
		Count: page.Total,
	}
	for _, u := range page.Users {
		resp.Data = append(resp.Data, domain.Project(u.Record(), fields))
	}

	base := h.baseURL(r) + "/" + h.Kind + "/" + jubsdk.EncodeComponent(expr)
	if page.HasNext {
		resp.Next = pageLink(base, fields, limit, skip+limit)
	}
	if page.HasPrev {
		resp.Prev = pageLink(base, fields, limit, max(skip-limit, 0))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *ListHandler) baseURL(r *http.Request) string {
	if h.PublicURL != "" {
		return strings.TrimSuffix(h.PublicURL, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// pageLink never carries the token; clients add their own.
func pageLink(base string, fields []string, limit, skip int) string {
	var p jubsdk.Params
	if len(fields) > 0 {
		p.Set("fields", strings.Join(fields, ","))
	}
	p.Set("limit", strconv.Itoa(limit))
	p.Set("skip", strconv.Itoa(skip))
	return jubsdk.BuildGetURL(base, p)
}

func intParam(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return n
}
