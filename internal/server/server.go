package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/foyer/internal/auth"
	"github.com/dukerupert/foyer/internal/backup"
	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/handler"
	"github.com/dukerupert/foyer/internal/middleware"
	"github.com/dukerupert/foyer/internal/push"
	ws "github.com/dukerupert/foyer/internal/websocket"
)

const (
	parentCodeLimit  = 5
	parentCodeWindow = time.Minute
)

// PushDeps enable the web push routes.
type PushDeps struct {
	Registry *push.Registry
	Service  *push.Service
	Notifier *push.Notifier
}

// Deps are the long-lived components the HTTP layer serves.
type Deps struct {
	Engine         *engine.Engine
	Sessions       *auth.Sessions
	Hub            *ws.Hub
	Backups        *backup.Manager
	Push           *PushDeps
	Metrics        http.Handler
	AllowedOrigins []string
	// TrustProxy keys the parent code limiter on X-Forwarded-For.
	TrustProxy bool
	Logger     *slog.Logger
}

type Server struct {
	hub         *ws.Hub
	sessions    *auth.Sessions
	sessionH    *handler.SessionHandler
	memberH     *handler.MemberHandler
	choreH      *handler.ChoreHandler
	ledgerH     *handler.LedgerHandler
	rewardH     *handler.RewardHandler
	backupH     *handler.BackupHandler
	pushH       *handler.PushHandler
	metrics     http.Handler
	origins     []string
	rateLimiter *middleware.RateLimiter
	clientIP    func(*http.Request) string
	logger      *slog.Logger
}

func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		hub:         d.Hub,
		sessions:    d.Sessions,
		sessionH:    handler.NewSessionHandler(d.Sessions, d.Engine, logger.With("component", "session")),
		memberH:     handler.NewMemberHandler(d.Engine, d.Sessions, logger.With("component", "member")),
		choreH:      handler.NewChoreHandler(d.Engine, logger.With("component", "chore")),
		ledgerH:     handler.NewLedgerHandler(d.Engine, logger.With("component", "ledger")),
		rewardH:     handler.NewRewardHandler(d.Engine, logger.With("component", "reward")),
		metrics:     d.Metrics,
		origins:     d.AllowedOrigins,
		rateLimiter: middleware.NewRateLimiter(),
		clientIP:    middleware.ClientIP(d.TrustProxy),
		logger:      logger,
	}
	if d.Backups != nil {
		s.backupH = handler.NewBackupHandler(d.Backups, logger.With("component", "backup"))
	}
	if d.Push != nil {
		s.pushH = handler.NewPushHandler(d.Push.Registry, d.Push.Service, d.Push.Notifier, d.Engine, logger.With("component", "push"))
	}
	return s
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no session required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /api/session", s.sessionH.Create)
	if s.hub != nil {
		outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.origins))
	}
	if s.metrics != nil {
		outerMux.Handle("GET /metrics", s.metrics)
	}

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)
	outerMux.Handle("/api/", middleware.RequireSession(s.sessions)(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, s.clientIP, parentCodeLimit, parentCodeWindow)
	return rl(h).ServeHTTP
}

func parentOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireParent(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Session
	mux.HandleFunc("GET /api/session", s.sessionH.Get)
	mux.HandleFunc("PUT /api/session/member", s.sessionH.SetMember)
	mux.HandleFunc("POST /api/session/parent", s.rateLimitedHandler(s.sessionH.EnterParent))
	mux.HandleFunc("DELETE /api/session/parent", s.sessionH.ExitParent)

	// Roster
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.Handle("POST /api/members", parentOnly(s.memberH.Create))
	mux.Handle("PUT /api/members/{name}", parentOnly(s.memberH.Rename))
	mux.Handle("PUT /api/members/{name}/role", parentOnly(s.memberH.ChangeRole))
	mux.Handle("DELETE /api/members/{name}", parentOnly(s.memberH.Delete))

	// Task catalog
	mux.HandleFunc("GET /api/tasks", s.choreH.ListTasks)
	mux.Handle("POST /api/tasks", parentOnly(s.choreH.CreateTask))
	mux.Handle("DELETE /api/tasks/{name}", parentOnly(s.choreH.DeleteTask))

	// Claims and completions
	mux.HandleFunc("GET /api/claims", s.choreH.ListPending)
	mux.HandleFunc("POST /api/claims", s.choreH.Submit)
	mux.Handle("POST /api/claims/{id}/settle", parentOnly(s.choreH.Settle))
	mux.Handle("POST /api/claims/{id}/reject", parentOnly(s.choreH.Reject))
	mux.Handle("POST /api/completions", parentOnly(s.choreH.DirectSettle))
	mux.HandleFunc("GET /api/completions", s.ledgerH.Completions)

	// Balances
	mux.HandleFunc("GET /api/ranking", s.ledgerH.Ranking)
	mux.HandleFunc("GET /api/treasury", s.ledgerH.Treasury)

	// Rewards
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.Handle("POST /api/rewards", parentOnly(s.rewardH.Create))
	mux.Handle("PUT /api/rewards/{id}", parentOnly(s.rewardH.Update))
	mux.Handle("DELETE /api/rewards/{id}", parentOnly(s.rewardH.Delete))
	mux.HandleFunc("POST /api/rewards/{id}/purchase", s.rewardH.Purchase)
	mux.HandleFunc("GET /api/deliveries", s.rewardH.Deliveries)
	mux.Handle("POST /api/deliveries/{id}/deliver", parentOnly(s.rewardH.Deliver))

	// Backups
	if s.backupH != nil {
		mux.Handle("GET /api/backups", parentOnly(s.backupH.List))
		mux.Handle("GET /api/backups/status", parentOnly(s.backupH.Status))
		mux.Handle("POST /api/backups", parentOnly(s.backupH.Run))
		mux.Handle("POST /api/backups/restore", parentOnly(s.backupH.Restore))
	}

	// Web push
	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /api/push/subscriptions", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions", s.pushH.Unsubscribe)
		mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)
	}
}
