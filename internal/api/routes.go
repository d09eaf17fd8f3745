package api

import (
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"district-map/internal/geo"
	"district-map/internal/session"
	"district-map/web"
)

// Cache buster timestamp (set at startup)
var cacheBuster = strconv.FormatInt(time.Now().Unix(), 10)

// NewRouter creates and configures the Chi router
func NewRouter(sessions *session.Store, loader *geo.Loader, settings Settings) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Logger)
	r.Use(CORS(settings.AllowedOrigins))

	// Create handlers
	h := NewHandlers(sessions, loader, settings)

	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(h.Sessions)
		r.Post("/upload", h.Upload)
		r.Get("/map", h.GetMap)
		r.Get("/legend", h.GetLegend)
		r.Post("/regions/{key}/district", h.Reassign)
		r.Get("/export", h.Export)
		r.Get("/stations", h.GetStations)
	})

	// Serve static files
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		zap.L().Fatal("api: static assets missing", zap.Error(err))
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Serve index.html for root with cache buster
	tmpl := template.Must(template.ParseFS(web.FS, "templates/index.html"))
	r.With(h.Sessions).Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if err := tmpl.Execute(w, map[string]interface{}{
			"V":         cacheBuster,
			"Districts": h.districtChoices(),
		}); err != nil {
			zap.L().Error("api: render index", zap.Error(err))
		}
	})

	return r
}
