package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"quiz-manager/internal/account"
	"quiz-manager/internal/auth"
	"quiz-manager/internal/config"
	"quiz-manager/internal/httpapi"
	"quiz-manager/internal/quiz"
	"quiz-manager/internal/quiz/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := run(cfg); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var revoked auth.RevocationList
	switch cfg.Auth.Revocation {
	case "memory":
		revoked = auth.NewMemoryRevocationList()
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return err
		}
		revoked = auth.NewRedisRevocationList(client)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, revoked)
	if err != nil {
		return err
	}

	accounts := account.NewService(store, account.BcryptHasher{Cost: cfg.Auth.BcryptCost})
	quizzes := quiz.NewService(store, store, accounts)
	api := httpapi.NewAPI(accounts, quizzes, tokens, httpapi.Options{
		StaticDir:      cfg.Server.StaticDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewRouter(api),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("quiz-service listening on %s (revocation=%s)", cfg.Server.Addr, cfg.Auth.Revocation)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("quiz-service shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
