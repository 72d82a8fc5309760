package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"vaultadmin/internal/auth"
	"vaultadmin/internal/config"
	"vaultadmin/internal/httpserver"
	"vaultadmin/internal/ipinfo"
	"vaultadmin/internal/lock"
	"vaultadmin/internal/logger"
	"vaultadmin/internal/services/account"
	"vaultadmin/internal/services/audit"
	"vaultadmin/internal/services/catalog"
	"vaultadmin/internal/services/dashboard"
	"vaultadmin/internal/store"
	"vaultadmin/internal/store/gormstore"
	"vaultadmin/internal/store/mongostore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, lg)
	if err != nil {
		lg.Fatalw("store open failed", "driver", cfg.StoreDriver, "error", err)
	}
	defer st.Close()

	locker, closeLocker, err := openLocker(cfg)
	if err != nil {
		lg.Fatalw("login lock setup failed", "mode", cfg.LoginLock, "error", err)
	}
	defer closeLocker()

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		lg.Fatalw("token issuer setup failed", "error", err)
	}

	accounts := account.NewService(st, issuer, ipinfo.New(cfg.IPLookupURL, cfg.IPLookupTimeout, lg), locker, cfg.SessionTTL, lg)
	if cfg.SeedAdmin() {
		created, err := accounts.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			lg.Fatalw("seed admin failed", "error", err)
		}
		if created {
			lg.Infow("seeded admin", "email", cfg.AdminEmail)
		}
	}

	router := httpserver.NewRouter(httpserver.Deps{
		Store:     st,
		Accounts:  accounts,
		Audit:     audit.NewService(st, lg),
		Dashboard: dashboard.NewService(st),
		Catalog:   catalog.NewService(st, lg),
	}, lg)

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router}
	go func() {
		lg.Infow("listening", "port", cfg.HTTPPort, "store", cfg.StoreDriver, "login_lock", cfg.LoginLock)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalw("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	lg.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Errorw("graceful shutdown failed", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config, lg *zap.SugaredLogger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return mongostore.Open(ctx, cfg.MongoURL, cfg.MongoDatabase, lg)
	default:
		return gormstore.Open(cfg.StoreDriver, cfg.DatabaseURL, lg)
	}
}

func openLocker(cfg config.Config) (lock.Locker, func(), error) {
	switch cfg.LoginLock {
	case config.LockMemory:
		return lock.NewMemory(), func() {}, nil
	case config.LockRedis:
		client, err := lock.Connect(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		l := lock.NewRedis(client, cfg.LoginLockTTL)
		return l, func() { _ = l.Close() }, nil
	default:
		return lock.Noop{}, func() {}, nil
	}
}
