// Package web serves the search box over HTTP.
package web

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jonwraymond/docsearch/loader"
	"github.com/jonwraymond/docsearch/rpc"
	"github.com/jonwraymond/docsearch/widget"
)

// Server is the HTTP surface for one loader and controller pair.
type Server struct {
	router chi.Router
	loader *loader.Loader
	ctrl   *widget.Controller
	rpc    *rpc.Server
	log    *slog.Logger
}

// NewServer creates and configures the HTTP server.
// The MCP routes are mounted only when tools is non-nil.
func NewServer(ldr *loader.Loader, ctrl *widget.Controller, tools *rpc.Server, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		loader: ldr,
		ctrl:   ctrl,
		rpc:    tools,
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handlePage)
	r.Get("/search", s.handleSearch)
	r.Get("/health", s.handleHealth)

	if s.rpc != nil {
		r.Post("/mcp", rpc.ServeHTTP(s.rpc).ServeHTTP)
		r.Post("/mcp/sse", rpc.ServeSSE(s.rpc).ServeHTTP)
	}

	s.router = r
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Search</title></head>
<body>
<form action="/" method="get">
<input id="search-input" type="search" name="q" value="{{.Query}}" autocomplete="off" autofocus>
</form>
{{.Results}}
</body>
</html>
`))

type pageData struct {
	Query   string
	Results template.HTML
}

// handlePage renders the search box with the results for ?q=.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var results strings.Builder
	if err := widget.RenderHTML(&results, s.ctrl.Evaluate(q)); err != nil {
		s.log.Error("render results", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Query:   q,
		Results: template.HTML(results.String()),
	})
	if err != nil {
		s.log.Error("render page", "error", err)
	}
}

// handleSearch returns only the result list fragment, one request per
// input-change event.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := widget.RenderHTML(w, s.ctrl.Evaluate(r.URL.Query().Get("q"))); err != nil {
		s.log.Error("render results", "error", err)
	}
}

type healthResponse struct {
	Status      string `json:"status"`
	Index       string `json:"index"`
	URL         string `json:"url,omitempty"`
	Documents   int    `json:"documents"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.loader.Stats()
	resp := healthResponse{
		Status:      "ok",
		Index:       stats.State.String(),
		URL:         stats.URL,
		Documents:   stats.Documents,
		Fingerprint: stats.Fingerprint,
		Error:       stats.Error,
	}

	status := http.StatusOK
	if stats.State == loader.StateFailed || stats.State == loader.StateClosed {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
