package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/bot"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/metrics"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store"
	"github.com/aussiebroadwan/invitebot/pkg/httpx"
	"github.com/aussiebroadwan/invitebot/pkg/ratelimit"
	"github.com/aussiebroadwan/invitebot/pkg/slogx"
)

// SecretTokenHeader carries the secret registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

var (
	// Telegram delivers updates from a small pool of addresses, so the
	// webhook limit is generous.
	WebhookLimit = ratelimit.Config{RequestsPerWindow: 600, Window: time.Minute, Burst: 100}
	HealthLimit  = ratelimit.Config{RequestsPerWindow: 120, Window: time.Minute, Burst: 20}
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	// Updates receives webhook deliveries. Nil leaves the webhook route
	// unregistered, which is the case in polling mode.
	Updates       bot.UpdateHandler
	WebhookSecret string
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerWebhook()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerWebhook() {
	if r.Updates == nil {
		return
	}

	h := &WebhookHandler{Updates: r.Updates}
	r.Mux.Handle("POST /v1/telegram/webhook",
		httpx.Chain(h,
			httpx.RateLimitByIP(WebhookLimit),
			httpx.RequireHeaderSecret(SecretTokenHeader, r.WebhookSecret),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(HealthLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(HealthLimit),
		),
	)
	r.Mux.Handle("GET /metrics", metrics.Handler())
}
