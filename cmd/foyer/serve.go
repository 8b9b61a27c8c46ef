package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/foyer/internal/auth"
	"github.com/dukerupert/foyer/internal/backup"
	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/metrics"
	"github.com/dukerupert/foyer/internal/push"
	"github.com/dukerupert/foyer/internal/server"
	ws "github.com/dukerupert/foyer/internal/websocket"
)

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and live event stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, port)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides config)")
	return cmd
}

func runServe(ctx context.Context, port string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()
	logger := rt.logger
	if port == "" {
		port = rt.cfg.Port
	}

	verifier, err := rt.cfg.Verifier()
	if err != nil {
		return err
	}
	if rt.cfg.Auth.ParentCodeHash == "" {
		logger.Warn("using plain parent code from config; set auth.parent_code_hash (see foyer hash-code)")
	}

	hub := ws.NewHub(logger.With("component", "websocket"))
	notifiers := engine.Notifiers{hub}

	var pushDeps *server.PushDeps
	if pc := rt.cfg.Push; pc.Enabled() {
		svc := push.NewService(pc.VAPIDPublicKey, pc.VAPIDPrivateKey, pc.Subscriber)
		registry := push.NewRegistry()
		pushDeps = &server.PushDeps{Registry: registry, Service: svc, Notifier: push.NewNotifier(svc, registry, logger)}
		notifiers = append(notifiers, pushDeps.Notifier)
	} else {
		logger.Info("web push disabled; run foyer vapid-keys to enable it")
	}

	m := metrics.New()
	e, err := rt.engine(ctx, engine.WithNotifier(notifiers), engine.WithRecorder(m))
	if err != nil {
		return err
	}
	if pushDeps != nil {
		pushDeps.Notifier.SetRoster(e)
	}

	backups := backup.NewManager(rt.cfg.BackupS3(), e, logger, func(s backup.Status) {
		hub.Broadcast(ws.NewMessage("backup", string(s.State), "", ""))
	})

	srv := server.New(server.Deps{
		Engine:         e,
		Sessions:       auth.NewSessions(verifier),
		Hub:            hub,
		Backups:        backups,
		Push:           pushDeps,
		Metrics:        m.Handler(),
		AllowedOrigins: rt.cfg.AllowedOrigins,
		TrustProxy:     rt.cfg.TrustProxy,
		Logger:         logger,
	})
	go srv.RateLimiter().RunCleanup(ctx, 5*time.Minute)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		// no Read/WriteTimeout: /ws connections stay open
		IdleTimeout: 120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("foyer listening", "addr", httpServer.Addr, "storage", rt.cfg.Storage.Driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = httpServer.Shutdown(shutdownCtx)
	if pushDeps != nil {
		pushDeps.Notifier.Wait()
	}
	return err
}
