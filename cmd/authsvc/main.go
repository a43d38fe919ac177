package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/csplay/lobby/internal/authsvc"
	"github.com/csplay/lobby/internal/config"
)

func main() {
	cfg := config.LoadAuthSvc()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.DatabaseDSN == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	users, err := authsvc.OpenStore(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set; tokens will not survive a restart")
	}

	svc := &authsvc.Service{
		Users:  users,
		Tokens: authsvc.NewTokenIssuer(cfg.JWTSecret, cfg.Issuer, cfg.TokenTTL),
		Log:    logger,
	}

	logger.Info("authsvc listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, svc.Routes()); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
