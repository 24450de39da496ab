package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/reelstack/apiserver/config"
	"github.com/reelstack/apiserver/internal/catalog"
	"github.com/reelstack/apiserver/internal/db"
	"github.com/reelstack/apiserver/internal/handlers"
	"github.com/reelstack/apiserver/internal/mq"
	"github.com/reelstack/apiserver/internal/services"
	"github.com/reelstack/apiserver/internal/session"
	"github.com/reelstack/apiserver/internal/storage"
	"github.com/reelstack/apiserver/internal/store"
	"github.com/rs/zerolog"
)

const redisPingTimeout = 5 * time.Second

// Server wraps the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	rdb        *redis.Client
	bus        *mq.MQ
	log        zerolog.Logger
}

// New wires the full dependency graph and constructs a Server.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	sessions := session.NewManager(rdb, cfg.Session.DefaultTTL, cfg.Session.LoginTTL, cfg.Session.RememberTTL)

	userRepo := store.NewUserRepository(dbConn)
	movieRepo := store.NewMovieRepository(dbConn)

	profileStorage, err := buildStorage(ctx, cfg, log)
	if err != nil {
		_ = dbConn.Close()
		_ = rdb.Close()
		return nil, err
	}

	bus, err := BuildMQ(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		_ = rdb.Close()
		return nil, err
	}
	var events services.EventPublisher
	if bus != nil {
		events = bus
	}

	userService := services.NewUserService(userRepo, profileStorage, events, log)
	favoriteService := services.NewFavoriteService(userRepo, movieRepo)
	catalogService := services.NewCatalogService(catalog.NewClient(cfg.Catalog), movieRepo, events, log)

	requireSession := handlers.RequireSession(sessions, cfg.Session.CookieName)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		accessLog(log),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, sessions, cfg.Session.CookieName, cfg.Session.Secure)
	})
	router.Route("/movies", func(r chi.Router) {
		handlers.MovieRouter(r, catalogService)
	})
	router.Route("/favorites", func(r chi.Router) {
		handlers.FavoriteRouter(r, favoriteService, requireSession)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		rdb:        rdb,
		bus:        bus,
		log:        log,
	}, nil
}

func buildStorage(ctx context.Context, cfg config.Config, log zerolog.Logger) (services.ProfileStorage, error) {
	switch cfg.Storage.Backend {
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, fmt.Errorf("init minio: %w", err)
		}
		st := storage.NewStorage(backend)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		return st, nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, fmt.Errorf("init gcs: %w", err)
		}
		st := storage.NewStorage(backend)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		return st, nil
	case "", "none":
		log.Warn().Msg("object storage disabled, profile pictures will not be stored")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// BuildMQ constructs the configured message broker, or nil when disabled.
func BuildMQ(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case "rabbitmq":
		backend, err := mq.NewRabbitMQClient(cfg.MQ.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("init rabbitmq: %w", err)
		}
		return mq.New(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubClient(ctx, cfg.MQ.PubSub)
		if err != nil {
			return nil, fmt.Errorf("init pubsub: %w", err)
		}
		return mq.New(backend), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown and closes all dependencies.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.bus != nil {
		_ = s.bus.Close()
	}
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
