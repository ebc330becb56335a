// Package web serves the drawing page and the session API. It glues
// the canvas decoder, the rasterizer, the record store and the mailer
// together; all domain rules live in those packages.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benoitkugler/equimark/internal/config"
	"github.com/benoitkugler/equimark/internal/diagram"
	"github.com/benoitkugler/equimark/internal/mail"
	"github.com/benoitkugler/equimark/internal/session"
)

//go:embed static/index.html
var staticFS embed.FS

// maxBody bounds a canvas payload upload. Long freehand sessions stay
// well under this.
const maxBody = 8 << 20

// Server owns the HTTP surface. It is safe for concurrent use; the
// store serializes writes itself.
type Server struct {
	log      *zap.Logger
	cfg      config.Config
	store    *session.Store
	diagrams *diagram.Set
	sender   mail.Sender
	logo     []byte // optional, empty when images/logo.png is absent

	page *template.Template
	mux  *http.ServeMux
}

func NewServer(log *zap.Logger, cfg config.Config, store *session.Store, diagrams *diagram.Set, sender mail.Sender) (*Server, error) {
	page, err := template.ParseFS(staticFS, "static/index.html")
	if err != nil {
		return nil, fmt.Errorf("editor page: %w", err)
	}
	s := &Server{
		log:      log,
		cfg:      cfg,
		store:    store,
		diagrams: diagrams,
		sender:   sender,
		page:     page,
		mux:      http.NewServeMux(),
	}
	if logo, err := os.ReadFile(cfg.LogoPath()); err == nil {
		s.logo = logo
	} else {
		log.Debug("No email logo", zap.String("path", cfg.LogoPath()))
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /diagrams/{side}", s.handleDiagram)
	s.mux.HandleFunc("POST /api/sessions", s.handleSave)
	s.mux.HandleFunc("GET /api/sessions", s.handleList)
	return s, nil
}

// Handler returns the full middleware-wrapped surface.
func (s *Server) Handler() http.Handler {
	return s.withRequestLog(s.mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		s.log.Info("Request served",
			zap.String("id", uuid.NewString()[:8]),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.log.Warn("Request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
