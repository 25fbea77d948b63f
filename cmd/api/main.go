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

	"github.com/geocoder89/todohub/internal/auth"
	"github.com/geocoder89/todohub/internal/config"
	"github.com/geocoder89/todohub/internal/db"
	httpx "github.com/geocoder89/todohub/internal/http"
	"github.com/geocoder89/todohub/internal/http/handlers"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/observability"
	"github.com/geocoder89/todohub/internal/redisclient"
	"github.com/geocoder89/todohub/internal/repo/memory"
	"github.com/geocoder89/todohub/internal/repo/postgres"
	"github.com/geocoder89/todohub/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type userStore interface {
	auth.UserStore
	handlers.AdminUserStore
	db.AdminStore
}

type stores struct {
	users  userStore
	todos  httpx.TodoRepo
	checks map[string]handlers.Check
	close  func()
}

func main() {
	if err := run(); err != nil {
		slog.Default().Error("startup failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: "todohub-api",
		Environment: cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Warn("tracing disabled", "err", err)
	}
	defer func() {
		sctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	hasher, err := security.NewHasher(cfg.PasswordScheme, cfg.BcryptCost)
	if err != nil {
		return err
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTTL())
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, prom)
	if err != nil {
		return err
	}
	defer st.close()

	seedCtx, cancelSeed := config.WithTimeout(10 * time.Second)
	err = db.EnsureAdminUser(seedCtx, st.users, hasher, cfg)
	cancelSeed()
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	var limiter middlewares.Limiter
	if cfg.RedisAddr != "" {
		rc, err := redisclient.New(ctx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer rc.Close()

		limiter = middlewares.NewRedisRateLimiter(rc.Cmdable(), "todohub:login:", cfg.LoginRateLimit, cfg.LoginRateWindow())
		st.checks["redis"] = rc.Ping
	}

	health := handlers.NewHealthHandler(st.checks)

	router := httpx.NewRouter(cfg, httpx.Deps{
		Auth:         auth.NewService(st.users, hasher, tokens),
		Verifier:     tokens,
		Users:        st.users,
		Todos:        st.todos,
		LoginLimiter: limiter,
		Prom:         prom,
		Gatherer:     reg,
		Health:       health,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	log.Info("server shutting down")
	health.SetShuttingDown()

	sctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom) (stores, error) {
	if cfg.StoreDriver == "memory" {
		slog.Default().Warn("using in-memory store; data is lost on restart")
		return stores{
			users:  memory.NewUsersRepo(),
			todos:  memory.NewTodosRepo(),
			checks: map[string]handlers.Check{},
			close:  func() {},
		}, nil
	}

	mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Migrate(mctx, cfg.DBURL); err != nil {
		return stores{}, err
	}

	pool, err := db.NewPool(ctx, cfg.DBURL, db.WithMaxConns(cfg.DBMaxConns))
	if err != nil {
		return stores{}, fmt.Errorf("connect postgres: %w", err)
	}

	return stores{
		users:  postgres.NewUsersRepo(pool, prom),
		todos:  postgres.NewTodosRepo(pool, prom),
		checks: map[string]handlers.Check{"postgres": pool.Ping},
		close:  pool.Close,
	}, nil
}
