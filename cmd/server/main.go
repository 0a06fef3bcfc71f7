package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-teetime/authclient"
	"github.com/jrsteele09/go-teetime/authflow"
	"github.com/jrsteele09/go-teetime/catalog"
	"github.com/jrsteele09/go-teetime/internal/config"
	"github.com/jrsteele09/go-teetime/metrics"
	"github.com/jrsteele09/go-teetime/server"
	"github.com/jrsteele09/go-teetime/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newSessionStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := session.NewService(store)
	if err != nil {
		return err
	}

	auth, err := authclient.New(c.GetAuthBaseURL(), authclient.WithTimeout(c.GetAuthTimeout()))
	if err != nil {
		return err
	}

	courses, err := catalog.Default()
	if err != nil {
		return err
	}

	flow, err := authflow.New(auth, sessions)
	if err != nil {
		return err
	}

	metrics.Register()

	handler, err := server.New(ctx, c, server.Deps{
		Catalog:  courses,
		Sessions: sessions,
		Auth:     flow,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(srv)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

// newSessionStore opens the configured session key/value store and returns its cleanup
func newSessionStore(ctx context.Context, c config.Config) (session.KVStore, func(), error) {
	if c.GetSessionStore() != config.SessionStoreRedis {
		log.Info().Msg("Using in-memory session store")
		store := session.NewMemoryStore(
			session.WithCapacity(c.GetSessionMemoryCapacity()),
			session.WithTTL(c.GetSessionCookieMaxAge()),
		)
		return store, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.GetRedisAddr(),
		Password: c.GetRedisPassword(),
		DB:       c.GetRedisDB(),
	})
	store, err := session.NewRedisStore(ctx, &session.RedisConfig{
		RedisClient: client,
		TTL:         c.GetSessionCookieMaxAge(),
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis session store")
	return store, func() {
		if err := client.Close(); err != nil {
			log.Err(err).Msg("failed to close redis client")
		}
	}, nil
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
