package api

import (
	"net/http"
	"package-tracking-service/internal/api/handlers"
	"package-tracking-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(logger zerolog.Logger, svc *services.PackageService, store sessions.Store) http.Handler {
	pkgHandler := &handlers.PackageHandler{Service: svc}
	webHandler := &handlers.WebHandler{Service: svc, Sessions: store}
	healthHandler := &handlers.HealthHandler{Store: svc}

	r := chi.NewRouter()
	r.Use(
		requestLogger(logger),
		middleware.Recoverer,
	)

	r.Get("/", handlers.Home)
	r.Get("/health", healthHandler.Health)

	r.Route("/packages", func(r chi.Router) {
		r.Post("/", pkgHandler.Create)
		r.Get("/", pkgHandler.List)
		r.Get("/{id}", pkgHandler.Get)
		r.Put("/{id}", pkgHandler.Update)
		r.Delete("/{id}", pkgHandler.Delete)
	})

	r.Get("/web", webHandler.List)
	r.Get("/web/", webHandler.List)
	r.Post("/packages-web", webHandler.Create)
	r.Post("/packages-web/", webHandler.Create)
	r.Get("/edit/{id}", webHandler.Edit)
	r.Post("/edit/{id}", webHandler.Update)
	r.Get("/delete/{id}", webHandler.Delete)

	return r
}

// NewSessionStore returns the cookie store that carries web flash messages.
func NewSessionStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	store.MaxAge(3600)
	return store
}
