package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/roshambo/internal/auth"
	"github.com/freeeve/roshambo/internal/config"
	"github.com/freeeve/roshambo/internal/handler"
	"github.com/freeeve/roshambo/internal/logger"
	"github.com/freeeve/roshambo/internal/middleware"
	"github.com/freeeve/roshambo/internal/repository/postgres"
	redisrepo "github.com/freeeve/roshambo/internal/repository/redis"
	"github.com/freeeve/roshambo/internal/service"
)

func main() {
	cfg := config.Load()
	closeLog := logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Dev: cfg.Dev})
	defer closeLog()
	log.Info().
		Str("port", cfg.Port).
		Int("warmup", cfg.EngineWarmup).
		Dur("matchTTL", cfg.MatchTTL).
		Int("maxRounds", cfg.MaxRounds).
		Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	matchRepo := postgres.NewMatchRepo(db)
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	wsHub := handler.NewHub()

	matchSvc := service.NewMatchService(matchRepo, redisClient, wsHub, service.MatchConfig{
		Warmup:    cfg.EngineWarmup,
		Seed:      cfg.EngineSeed,
		TTL:       cfg.MatchTTL,
		MaxRounds: cfg.MaxRounds,
	})
	reaper := service.NewIdleReaper(matchSvc, cfg.MatchTTL, time.Minute)

	authHandler := handler.NewAuthHandler(jwtMgr)
	matchHandler := handler.NewMatchHandler(matchSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr, matchSvc)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			status, code = "database unavailable", http.StatusServiceUnavailable
		} else if err := redisClient.Ping(r.Context()); err != nil {
			status, code = "redis unavailable", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write([]byte(`{"status":"` + status + `"}`))
	})

	// Auth (public)
	mux.HandleFunc("POST /auth/guest", authHandler.Guest)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("POST /matches", matchHandler.CreateMatch)
	api.HandleFunc("GET /matches", matchHandler.ListMatches)
	api.HandleFunc("GET /matches/recent", matchHandler.ListRecent)
	api.HandleFunc("GET /matches/{id}", matchHandler.GetMatch)
	api.HandleFunc("POST /matches/{id}/moves", matchHandler.PlayMove)
	api.HandleFunc("POST /matches/{id}/finish", matchHandler.FinishMatch)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)
	mux.HandleFunc("GET /api/v1/play", wsHandler.ServePlay)

	root := middleware.Chain(mux, middleware.Logger, middleware.Recover, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go reaper.Start(ctx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	// Store whatever is still in play before the engines go away.
	if n := reaper.Sweep(shutdownCtx, time.Now().Add(cfg.MatchTTL+time.Second)); n > 0 {
		log.Info().Int("count", n).Msg("Finished live matches on shutdown")
	}
	cancel()
	log.Info().Msg("Server stopped")
}
