package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poopay/poopay-realtime/config"
	"github.com/poopay/poopay-realtime/handlers"
	"github.com/poopay/poopay-realtime/internal/auth"
	"github.com/poopay/poopay-realtime/internal/invitation"
	"github.com/poopay/poopay-realtime/internal/notification"
	"github.com/poopay/poopay-realtime/internal/session"
	"github.com/poopay/poopay-realtime/internal/store"
	"github.com/poopay/poopay-realtime/internal/websocket"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/router"
	"github.com/poopay/poopay-realtime/services"
	"golang.org/x/sync/errgroup"
)

// Version is set at build time.
var Version = "dev"

// @title POOPAY Realtime API
// @version 1.0
// @description Local API of the POOPAY real-time notification core.
// @BasePath /
func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dump, err := cfg.YAML(); err == nil {
		log.Debugf("Effective configuration:\n%s", dump)
	}

	userID, err := auth.ResolveUserID(cfg.Auth.Token, cfg.Auth.UserID)
	if err != nil {
		log.Fatalf("Failed to resolve user id: %v", err)
	}

	client := notification.NewClient(cfg.API.BaseURL,
		notification.WithTimeout(cfg.API.Timeout()),
		notification.WithUserAgent("poopay-realtime/"+Version))

	live, err := websocket.NewManager(websocket.OptionsFromConfig(cfg.Live))
	if err != nil {
		log.Fatalf("Failed to create live channel: %v", err)
	}

	notifications := store.NewNotificationStore(client)
	sess := session.New(notifications, live)
	workflow := invitation.NewWorkflow(client, notifications, sess)

	engine := router.SetupRouter(router.Dependencies{
		Config:              cfg,
		HealthHandler:       handlers.NewHealthHandler(services.NewHealthService(live, notifications, Version)),
		NotificationHandler: handlers.NewNotificationHandler(sess, notifications),
		InvitationHandler:   handlers.NewInvitationHandler(workflow, notifications),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("Starting local API", "address", cfg.Server.Address, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		creds := session.Credentials{Token: cfg.Auth.Token, UserID: userID}
		if err := sess.Start(gctx, creds); err != nil {
			// The live channel stays up without the initial snapshot.
			log.Warnw("Session started in degraded mode", "error", err)
		}
		<-gctx.Done()
		sess.Stop()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorw("Shutdown with error", "error", err)
		_ = logger.Close()
		os.Exit(1)
	}
	log.Info("Shutdown complete")
}
