package trainbot_web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/conversation"
	"tarediiran-industries.com/trainbot/internal/trainsync"
)

const (
	sessionName = "trainbot"
	sessionTab  = "tab"
)

type ChatState interface {
	Snapshot() conversation.Snapshot
	Send(text string) bool
	SetInput(text string)
}

type TrainState interface {
	Snapshot() trainsync.State
	Seed() error
	Refresh()
}

type Subscriber interface {
	Subscribe() chan struct{}
	Unsubscribe(ch chan struct{})
}

type ServerConfig struct {
	ListenAddress string
	SessionSecret string
	Chat          ChatState
	Trains        TrainState
	Updates       Subscriber
	Logger        *zap.Logger
}

type TrainbotWebServer struct {
	server   *http.Server
	router   chi.Router
	renderer *Renderer
	sessions sessions.Store
	chat     ChatState
	trains   TrainState
	updates  Subscriber
	logger   *zap.Logger
}

func NewTrainbotWebServer(cfg ServerConfig) (*TrainbotWebServer, error) {
	if cfg.Chat == nil || cfg.Trains == nil || cfg.Updates == nil {
		return nil, errors.New("trainbot_web: chat, trains and updates are required")
	}

	renderer, err := NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	server := &TrainbotWebServer{
		server:   httpServer,
		router:   router,
		renderer: renderer,
		sessions: store,
		chat:     cfg.Chat,
		trains:   cfg.Trains,
		updates:  cfg.Updates,
		logger:   common.OrNop(cfg.Logger).Named("web"),
	}

	router.Get("/", server.handleIndex)
	router.Get("/updates", server.handleUpdates)
	router.Get("/{tab}", server.handleSelectTab)
	router.Post("/chat/send", server.handleChatSend)
	router.Post("/chat/draft", server.handleChatDraft)
	router.Post("/trains/seed", server.handleTrainsSeed)
	router.Post("/trains/refresh", server.handleTrainsRefresh)

	return server, nil
}

func (server *TrainbotWebServer) Handler() http.Handler {
	return server.router
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down.
// Open update streams end with ctx.
func (server *TrainbotWebServer) Serve(ctx context.Context) error {
	server.server.BaseContext = func(net.Listener) context.Context { return ctx }

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		server.logger.Info("listening", zap.String("address", "http://localhost"+server.server.Addr))
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
