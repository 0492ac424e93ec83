package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"chdash/internal"
	"chdash/internal/auth"
	"chdash/internal/dashboard"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFiles embed.FS

// sessionCookie carries the session token issued at login
const sessionCookie = "chd_session"

// Server is the gin web server for the dashboard
type Server struct {
	router    *gin.Engine
	dashboard *dashboard.Service
	sessions  *auth.Sessions
	templates *template.Template
	notes     map[string]template.HTML
	log       *internal.Logger
}

// NewServer creates the dashboard server and registers its routes
func NewServer(svc *dashboard.Service, sessions *auth.Sessions) (*Server, error) {
	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"num": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		dashboard: svc,
		sessions:  sessions,
		templates: templates,
		notes:     renderNotes(),
		log:       internal.DefaultLogger.With("UI"),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
}

func (s *Server) setupRoutes() {
	s.router.GET("/login", s.handleLoginPage)
	s.router.POST("/login", s.handleLogin)

	protected := s.router.Group("/")
	protected.Use(s.RequireSession())
	{
		protected.POST("/logout", s.handleLogout)
		protected.GET("/", s.handleDashboard)
		protected.GET("/api/dashboard", s.handleDashboardAPI)
		protected.GET("/charts/:name", s.handleChart)
	}
}
