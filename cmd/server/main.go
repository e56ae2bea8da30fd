package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/abira1/Academy-Management-System/internal/auth"
	"github.com/abira1/Academy-Management-System/internal/config"
	"github.com/abira1/Academy-Management-System/internal/metrics"
	"github.com/abira1/Academy-Management-System/internal/middleware"
	"github.com/abira1/Academy-Management-System/internal/mirror"
	"github.com/abira1/Academy-Management-System/internal/models"
	"github.com/abira1/Academy-Management-System/internal/scheduler"
	"github.com/abira1/Academy-Management-System/internal/seed"
	"github.com/abira1/Academy-Management-System/internal/service"
	"github.com/abira1/Academy-Management-System/internal/storage"
	"github.com/abira1/Academy-Management-System/internal/storage/memory"
	"github.com/abira1/Academy-Management-System/internal/storage/mongo"
	"github.com/abira1/Academy-Management-System/internal/storage/redis"
	"github.com/abira1/Academy-Management-System/internal/storage/sqlite"
	"github.com/abira1/Academy-Management-System/pkg/logging"
)

func main() {
	envFile := flag.String("env", "", "path to a .env file (default: ./.env if present)")
	flag.Parse()

	if err := run(*envFile); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Store.Driver)

	hasher := auth.Hasher{}
	set := mirror.NewSet(store, hasher, mirror.Options{Logger: logger, Metrics: m})
	if err := set.Start(ctx); err != nil {
		return err
	}
	defer set.Stop()
	l := set.Ledger()
	slog.Info("Mirrors attached",
		"students", len(l.Students),
		"teachers", len(l.Teachers),
		"expenses", len(l.Expenses),
		"partners", len(l.Partners),
	)

	if cfg.Seed.OnEmpty {
		if _, err := seed.IfEmpty(ctx, set, logger); err != nil {
			return err
		}
	}

	staff, err := staffAccounts(cfg, hasher)
	if err != nil {
		return err
	}
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(staff, set.Partners)

	public := connect.WithInterceptors(middleware.LoggingInterceptor())
	authed := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor())

	mux := http.NewServeMux()
	mux.Handle(service.NewAuthService(authenticator, jwtManager, logger).Handler(public))
	mux.Handle(service.NewRecordsService(set, logger).Handler(authed))
	mux.Handle(service.NewDashboardService(set, cfg.Reporting.IncomePolicy, logger).Handler(authed))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", healthHandler(set))

	sched := scheduler.New(cfg.Reporting.CronSchedule, cfg.Location(), set, cfg.Reporting.IncomePolicy, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() { <-sched.Stop().Done() }()

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (storage.RecordStore, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.Store.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.DriverRedis:
		store, err := redis.Dial(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil
	case config.DriverMongo:
		store, err := mongo.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return store, nil
	case config.DriverMemory:
		slog.Warn("Using the in-memory store; records are lost on exit")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func staffAccounts(cfg *config.Config, hasher auth.Hasher) ([]auth.StaffAccount, error) {
	admin, err := auth.NewStaffAccount(cfg.Auth.AdminUsername, models.RoleAdmin, cfg.Auth.AdminPassword, hasher)
	if err != nil {
		return nil, err
	}
	accounts := []auth.StaffAccount{admin}
	if cfg.Auth.ReceptionUsername != "" {
		reception, err := auth.NewStaffAccount(cfg.Auth.ReceptionUsername, models.RoleReception, cfg.Auth.ReceptionPassword, hasher)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, reception)
	}
	return accounts, nil
}

// healthHandler reports 503 while any mirror is stale.
func healthHandler(set *mirror.Set) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stale := map[string]string{}
		for c, err := range set.Stale() {
			stale[c] = err.Error()
		}
		w.Header().Set("Content-Type", "application/json")
		if len(stale) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": len(stale) == 0, "stale": stale})
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
