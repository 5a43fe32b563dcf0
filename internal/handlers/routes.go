package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Picker page
	if h.templates != nil {
		r.Get("/", h.handleIndex)
	}
	if h.staticServer != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
	}

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", h.handleGetInfo)
		r.Get("/state", h.handleGetState)

		// Categories and dishes
		r.Get("/categories", h.handleGetCategories)
		r.Post("/categories/{id}/dishes", h.handleAddDish)
		r.Delete("/categories/{id}/dishes/{index}", h.handleRemoveDish)
		r.Put("/categories/{id}/servings", h.handleSetServings)
		r.Put("/categories/{id}/enabled", h.handleSetEnabled)

		// Combos
		r.Post("/combos", h.handleGenerateCombo)
		r.Get("/combos/last/text", h.handleComboText)
		r.Get("/combos/last/qr", h.handleComboQR)

		// Pools and history
		r.Post("/pools/reset", h.handleResetPools)
		r.Delete("/history", h.handleClearHistory)
		r.Get("/history.xlsx", h.handleHistoryWorkbook)

		// Backup
		r.Get("/backup", h.handleExportBackup)
		r.Post("/backup", h.handleImportBackup)
	})

	return r
}
