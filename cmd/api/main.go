package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/niangamadou888/bookish-beacon-blog/internal/config"
	"github.com/niangamadou888/bookish-beacon-blog/internal/crypto"
	"github.com/niangamadou888/bookish-beacon-blog/internal/handler"
	"github.com/niangamadou888/bookish-beacon-blog/internal/repository"
	"github.com/niangamadou888/bookish-beacon-blog/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	users, posts, closeStore, err := openStores(cfg)
	if err != nil {
		slog.Error("store unavailable", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	tokens := crypto.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	hasher := crypto.NewPasswordHasher(crypto.DefaultHashParams())

	router := handler.NewRouter(handler.RouterConfig{
		Auth:       handler.NewAuthHandler(service.NewAuthService(users, tokens, hasher)),
		Posts:      handler.NewPostHandler(service.NewPostService(posts)),
		Tokens:     tokens,
		CORSOrigin: cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		return
	}

	slog.Info("server stopped")
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// openStores connects the backend named by STORE_DRIVER and returns its user and
// post stores with a func that releases it.
func openStores(cfg config.Config) (service.UserStore, service.PostStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverBadger:
		store, err := repository.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, nil, nil, err
		}
		closer := func() {
			if err := store.Close(); err != nil {
				slog.Error("closing badger", "error", err)
			}
		}
		return store.Users(), store.Posts(), closer, nil

	case config.DriverMongo:
		store, err := repository.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, nil, err
		}
		closer := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(ctx); err != nil {
				slog.Error("closing mongo", "error", err)
			}
		}
		return store.Users(), store.Posts(), closer, nil

	case config.DriverMySQL:
		db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repository.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		closer := func() {
			if err := db.Close(); err != nil {
				slog.Error("closing mysql", "error", err)
			}
		}
		return repository.NewUserRepository(db), repository.NewPostRepository(db), closer, nil
	}

	return nil, nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.StoreDriver)
}
