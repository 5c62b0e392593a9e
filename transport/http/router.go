package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"secure-chat/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators of the HTTP layer.
// A nil Inspector leaves /debug/keys unrouted.
type Dependencies struct {
	Membership     services.IMembershipService
	Messages       services.IMessageService
	Auth           services.IAuthService
	Tokens         TokenValidator
	Gatherer       prometheus.Gatherer
	Inspector      *badger.DB
	Log            *slog.Logger
	RequestTimeout time.Duration
}

// Handler is the thin HTTP layer. It decodes requests, calls the services
// with the authenticated caller id and maps their errors to status codes.
type Handler struct {
	membership services.IMembershipService
	messages   services.IMessageService
	auth       services.IAuthService
	inspector  *badger.DB
	log        *slog.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	h := &Handler{
		membership: deps.Membership,
		messages:   deps.Messages,
		auth:       deps.Auth,
		inspector:  deps.Inspector,
		log:        deps.Log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(deps.RequestTimeout))
		r.Use(middleware.AllowContentType("application/json"))

		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(deps.Tokens, deps.Log))
			r.Post("/groups", h.handleCreateGroup)
			r.Route("/groups/{groupId}", func(r chi.Router) {
				r.Get("/", h.handleGetGroup)
				r.Post("/join", h.handleJoin)
				r.Post("/leave", h.handleLeave)
				r.Post("/banish", h.handleBanish)
				r.Post("/approve", h.handleApprove)
				r.Post("/messages", h.handleSendMessage)
				r.Get("/messages", h.handleListMessages)
			})
		})
	})

	if deps.Inspector != nil {
		r.With(RequireAuth(deps.Tokens, deps.Log)).Get("/debug/keys", h.handleDebugKeys)
	}
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
