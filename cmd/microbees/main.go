// Command microbees runs the multi-tenant identity service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qubeio/microbees/config"
	"github.com/qubeio/microbees/directory"
	"github.com/qubeio/microbees/logger"
	"github.com/qubeio/microbees/model"
	"github.com/qubeio/microbees/observability"
	"github.com/qubeio/microbees/server"
	"github.com/qubeio/microbees/server/endpoint"
	"github.com/qubeio/microbees/tenant"
	"github.com/qubeio/microbees/token"
)

const serviceName = "microbees"

func main() {
	var cfg appConfig
	if err := config.Load(serviceName, &cfg); err != nil {
		logger.GetGlobalLogger().Fatal("Failed to load configuration", logger.ErrorFields("load", err))
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		logger.GetGlobalLogger().Fatal("Invalid configuration", logger.ErrorFields("validate", err))
	}

	logger.Init(cfg.Logging, cfg.Base.Name)
	log := logger.GetGlobalLogger()
	log.Info("Starting service", map[string]interface{}{
		"name":        cfg.Base.Name,
		"version":     cfg.Base.Version,
		"environment": cfg.Base.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownObs, err := observability.Init(ctx, cfg.Observability, cfg.Base.Name, cfg.Base.Version, cfg.Base.Environment)
	if err != nil {
		log.Fatal("Failed to initialize observability", logger.ErrorFields("otel", err))
	}

	// The base store must be reachable at startup; a per-tenant namespace
	// failing later is a request-scoped error, not a process failure.
	registry, err := tenant.NewRegistry(cfg.Store, log, model.Entities()...)
	if err != nil {
		log.Fatal("Failed to initialize tenant registry", logger.ErrorFields("store", err))
	}

	codec, err := token.NewCodec(cfg.Auth)
	if err != nil {
		log.Fatal("Failed to initialize token codec", logger.ErrorFields("token", err))
	}

	dir := directory.NewService(registry, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(cfg.Base.Name)
	srv.GinEngine().GET("/health", endpoint.Health(cfg.Base.Name, healthChecker(registry)))
	server.NewHandler(dir, codec, log).RegisterRoutes(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		log.Fatal("Failed to start server", logger.ErrorFields("serve", err))
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Server shutdown error", logger.ErrorFields("shutdown", err))
	}
	if err := registry.Close(); err != nil {
		log.Error("Failed to close tenant sessions", logger.ErrorFields("close", err))
	}
	if err := shutdownObs(shutdownCtx); err != nil {
		log.Error("Observability shutdown error", logger.ErrorFields("otel", err))
	}

	log.Info("Service stopped")
	os.Exit(0)
}

// healthChecker reports the base store's reachability.
func healthChecker(registry *tenant.Registry) endpoint.Checker {
	return func(ctx context.Context) []endpoint.Check {
		check := endpoint.Check{Name: "store", Status: "healthy"}
		if err := registry.Ping(ctx); err != nil {
			check.Status = "unhealthy"
			check.Message = err.Error()
		}
		return []endpoint.Check{check}
	}
}
