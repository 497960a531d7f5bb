// Package api is the reference TrainBot backend: the JSON contract the
// clients consume, served from the train store.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/trainstore"
)

type TrainStore interface {
	Ping(ctx context.Context) error
	DSN() string
	ListTrains(ctx context.Context) ([]trainstore.Train, error)
	SearchRoute(ctx context.Context, from, to string) ([]trainstore.Train, error)
	SearchWords(ctx context.Context, words []string) ([]trainstore.Train, error)
	SeedFromCSV(ctx context.Context, filePath string) (trainstore.SeedResult, error)
}

type ServerConfig struct {
	ListenAddress string
	Store         TrainStore
	SeedCSV       string
	CORSOrigins   []string
	Logger        *zap.Logger
}

type TrainbotAPIServer struct {
	server  *http.Server
	router  chi.Router
	store   TrainStore
	seedCSV string
	logger  *zap.Logger
}

func NewTrainbotAPIServer(cfg ServerConfig) (*TrainbotAPIServer, error) {
	if cfg.Store == nil {
		return nil, errors.New("api: store is required")
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(CORS(cfg.CORSOrigins))
	router.Use(middleware.StripSlashes)

	server := &TrainbotAPIServer{
		server: &http.Server{
			Addr:              cfg.ListenAddress,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		router:  router,
		store:   cfg.Store,
		seedCSV: cfg.SeedCSV,
		logger:  common.OrNop(cfg.Logger).Named("api"),
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/healthcheck", server.handleHealthcheck)
		r.Get("/db/health", server.handleDBHealth)
		r.Get("/trains-data", server.handleTrainsData)
		r.Post("/seed-data", server.handleSeedData)
		r.Post("/chatResponse", server.handleChatResponse)
	})

	return server, nil
}

func (server *TrainbotAPIServer) Handler() http.Handler {
	return server.router
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down.
func (server *TrainbotAPIServer) Serve(ctx context.Context) error {
	server.server.BaseContext = func(net.Listener) context.Context { return ctx }

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		server.logger.Info("listening", zap.String("address", server.server.Addr))
		if err := server.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		server.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
