package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/TinoSanchez/app-achatrevente/api/controllers"
	"github.com/TinoSanchez/app-achatrevente/api/middleware"
	"github.com/TinoSanchez/app-achatrevente/api/routes"
	"github.com/TinoSanchez/app-achatrevente/internal/auth"
	"github.com/TinoSanchez/app-achatrevente/internal/importexport"
	"github.com/TinoSanchez/app-achatrevente/internal/prefs"
	"github.com/TinoSanchez/app-achatrevente/internal/records"
	"github.com/TinoSanchez/app-achatrevente/pkg/auth/session"
	"github.com/TinoSanchez/app-achatrevente/pkg/config"
	"github.com/TinoSanchez/app-achatrevente/pkg/db"
	"github.com/TinoSanchez/app-achatrevente/pkg/localstore"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
	"github.com/TinoSanchez/app-achatrevente/pkg/metrics"
	"github.com/TinoSanchez/app-achatrevente/pkg/migrate"
	"github.com/TinoSanchez/app-achatrevente/pkg/redis"
	"github.com/TinoSanchez/app-achatrevente/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()

	deps := routes.Deps{
		Registry:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Health:      map[string]controllers.Pinger{},
	}

	images, err := storage.NewDiskStore(context.Background(), cfg.Media, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap image storage", err)
		os.Exit(1)
	}
	deps.Images = images
	deps.Health["media"] = images
	deps.MediaRoot = images.Root()

	var closers []func() error

	if cfg.RemoteEnabled() {
		dbClient, err := db.New(context.Background(), cfg.DB, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap database", err)
			os.Exit(1)
		}
		closers = append(closers, dbClient.Close)
		deps.Health["db"] = dbClient

		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}

		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
		deps.RedisClient = redisClient
		deps.Health["redis"] = redisClient

		sessions, err := session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			logg.Error(context.Background(), "failed to create session manager", err)
			os.Exit(1)
		}

		gateway, err := auth.NewRemoteGateway(auth.RemoteGatewayParams{
			Users:          auth.NewUserRepository(dbClient.DB()),
			Sessions:       sessions,
			JWTConfig:      cfg.JWT,
			PasswordConfig: cfg.Password,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create auth gateway", err)
			os.Exit(1)
		}
		deps.Gateway = gateway
		deps.AuthGuard = middleware.Auth(cfg.JWT, sessions, logg)

		feed, err := records.NewRedisFeed(redisClient, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create change feed", err)
			os.Exit(1)
		}
		deps.RecordStore, err = records.NewRemoteStore(records.NewRepository(dbClient.DB()), feed, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create record store", err)
			os.Exit(1)
		}

		deps.PrefStore, err = prefs.NewRemoteStore(dbClient.DB())
		if err != nil {
			logg.Error(context.Background(), "failed to create preference store", err)
			os.Exit(1)
		}
	} else {
		local, err := localstore.New(cfg.LocalStore.Dir)
		if err != nil {
			logg.Error(context.Background(), "failed to open local store", err)
			os.Exit(1)
		}

		gateway, err := auth.NewLocalGateway(local)
		if err != nil {
			logg.Error(context.Background(), "failed to create auth gateway", err)
			os.Exit(1)
		}
		deps.Gateway = gateway
		deps.AuthGuard = middleware.LocalAuth(gateway, logg)

		deps.RecordStore, err = records.NewLocalStore(local)
		if err != nil {
			logg.Error(context.Background(), "failed to create record store", err)
			os.Exit(1)
		}

		deps.PrefStore, err = prefs.NewLocalStore(local)
		if err != nil {
			logg.Error(context.Background(), "failed to create preference store", err)
			os.Exit(1)
		}
	}

	saver := prefs.NewDebouncedSaver(deps.PrefStore, prefs.DefaultDebounce)
	deps.PrefSaver = saver

	deps.SKUService, err = records.NewSKUService(deps.RecordStore, prefs.SKUAdapter{Store: deps.PrefStore})
	if err != nil {
		logg.Error(context.Background(), "failed to create sku service", err)
		os.Exit(1)
	}

	deps.Porter, err = importexport.NewService(deps.RecordStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create import/export service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"remote": cfg.RemoteEnabled(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, deps),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during shutdown", err)
		}
	}

	// Pending debounced preference writes land before exit.
	if err := saver.Flush(context.Background()); err != nil {
		logg.Error(ctx, "error flushing preferences", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logg.Error(ctx, "error closing resource", err)
		}
	}
}
