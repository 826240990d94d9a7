// Package server is the HTTP shell of the template editor: it loads
// templates from a source client, opens one editing session per page and
// streams preview frames back to the page script after every field edit.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-formpreview/internal/ctxlog"
	"github.com/goliatone/go-formpreview/pkg/editor"
	gotemplate "github.com/goliatone/go-formpreview/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla"
	"github.com/goliatone/go-formpreview/pkg/source"
)

const (
	defaultTitle = "Template settings"
	assetsPrefix = "/assets"
)

// Server routes editor requests.
type Server struct {
	client      source.Client
	sessions    *editor.Manager
	sessionOpts []editor.Option
	forms       *vanilla.Renderer
	pages       *gotemplate.Engine
	templateID  string
	title       string
	timeout     time.Duration
	logger      *slog.Logger
	mux         *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger attached to every request context.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTemplateID sets the template opened by the editor page when the
// request does not name one.
func WithTemplateID(id string) Option {
	return func(s *Server) {
		if id != "" {
			s.templateID = id
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		if title != "" {
			s.title = title
		}
	}
}

// WithSessionOptions applies opts to every session the server opens.
func WithSessionOptions(opts ...editor.Option) Option {
	return func(s *Server) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// WithFormRenderer replaces the vanilla form renderer.
func WithFormRenderer(renderer *vanilla.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.forms = renderer
		}
	}
}

// WithFetchTimeout bounds template fetches started by page loads.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.timeout = timeout
	}
}

// New builds a server over client.
func New(client source.Client, opts ...Option) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("server: source client is nil")
	}
	s := &Server{
		client: client,
		title:  defaultTitle,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.forms == nil {
		forms, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.forms = forms
	}
	pages, err := gotemplate.New(
		gotemplate.WithName("pages"),
		gotemplate.WithFS(TemplatesFS()),
		gotemplate.WithExtension(".tmpl"),
		gotemplate.WithGlobalData(map[string]any{
			"title":    s.title,
			"assets":   assetsPrefix,
			"sessions": "/sessions",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("server: configure page templates: %w", err)
	}
	s.pages = pages

	sessionOpts := append([]editor.Option{editor.WithLogger(s.logger)}, s.sessionOpts...)
	s.sessions = editor.NewManager(sessionOpts...)

	s.mux = http.NewServeMux()
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.Handle("GET "+assetsPrefix+"/", http.StripPrefix(assetsPrefix+"/", http.FileServerFS(vanilla.AssetsFS())))
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /templates", s.handleListTemplates)
	s.mux.HandleFunc("GET /templates/{id}", s.handleTemplate)
	s.mux.HandleFunc("POST /sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /sessions/{id}", s.handleSessionPage)
	s.mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("PUT /sessions/{id}/template", s.handleSetTemplate)
	s.mux.HandleFunc("POST /sessions/{id}/fields/{name}", s.handleField)
	s.mux.HandleFunc("POST /sessions/{id}/submit", s.handleSubmit)
	s.mux.HandleFunc("POST /sessions/{id}/errors", s.handleErrors)
	s.mux.HandleFunc("GET /sessions/{id}/preview", s.handlePreview)
}

// Handler returns the root handler. Each request carries the server logger
// in its context.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.With("method", r.Method, "path", r.URL.Path)
		logger.Debug("request")
		s.mux.ServeHTTP(w, r.WithContext(ctxlog.WithLogger(r.Context(), logger)))
	})
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	return s.sessions.Len()
}

// Close tears down every open session.
func (s *Server) Close() {
	s.sessions.CloseAll()
}
