// Package api is the HTTP surface: report intake, PIN-gated status views,
// manager case management, the WAHA webhook and the dashboard WebSocket.
package api

import (
	"net/http"

	"wbs/internal/auth"
	"wbs/internal/pipeline"
	"wbs/internal/schema"
	"wbs/internal/store"
	"wbs/internal/ws"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Dependencies struct {
	Pipeline *pipeline.Pipeline
	Store    store.Store
	Auth     *auth.JWTConfig
	Schema   *schema.Compiler
	Hub      *ws.Hub
	Notifier pipeline.Notifier
	Log      *zap.Logger
}

func Routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	// Add request logging middleware
	r.Use(RequestLogger(d.Log))

	r.Get("/healthz", d.health)
	r.Post("/webhook/waha", d.wahaWebhook)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", d.login)

		// Report intake and reporter-facing access. The status and
		// message endpoints are dual-gated: PIN for reporters, bearer
		// token for managers.
		r.Post("/reports", d.submitReport)
		r.Get("/reports/{reportID}", d.getReport)
		r.Get("/reports/{reportID}/messages", d.listMessages)
		r.Post("/reports/{reportID}/messages", d.postMessage)
		r.Post("/reports/{reportID}/messages/read", d.markMessagesRead)

		// Manager-only routes.
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Middleware)
			r.Get("/reports", d.listReports)
			r.Post("/reports/{reportID}/status", d.updateStatus)
			r.Post("/reports/{reportID}/assign", d.assignInvestigator)
			r.Get("/statistics", d.statistics)
		})

		// WebSocket endpoint
		r.Get("/ws", d.wsHandler)
	})

	return r
}

func (d Dependencies) health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
