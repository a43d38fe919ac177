package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/csplay/lobby/internal/authclient"
	"github.com/csplay/lobby/internal/config"
	"github.com/csplay/lobby/internal/httpapi"
	"github.com/csplay/lobby/internal/lobby"
	"github.com/csplay/lobby/internal/session"
)

func main() {
	cfg := config.LoadLobby()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := session.NewStore(cfg.SessionFile, logger)
	auth := authclient.New(authclient.Config{
		BaseURL: cfg.AuthBaseURL,
		Mode:    cfg.CredentialMode,
		Timeout: cfg.AuthTimeout,
	}, logger)
	lb := lobby.NewLobby(ctx)

	// Silent session re-hydration: resolve the stored token to a profile,
	// or to anonymous. The result is discarded if we are already shutting
	// down; failures never surface to the user.
	go func() {
		profile, err := auth.Me(ctx, sess.Token())
		if err != nil {
			logger.Warn("session check unavailable", zap.Error(err))
		}
		if ctx.Err() != nil {
			return
		}
		sess.Resolve(profile)
	}()

	handler := httpapi.SetupRoutes(&httpapi.API{
		Lobby:   lb,
		Session: sess,
		Auth:    auth,
		Log:     logger,
	})

	logger.Info("lobbyd listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
