// Package app contains the application setup for the inventory service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/invtrack/internal/config"
	"github.com/abgdnv/invtrack/internal/service"
	"github.com/abgdnv/invtrack/internal/store"
	"github.com/abgdnv/invtrack/internal/transport/rest"
	"github.com/abgdnv/invtrack/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	InventoryService service.InventoryService
	Logger           *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, logger *slog.Logger) *Dependencies {
	iService := service.NewService(store.NewPgStore(dbPool))

	return &Dependencies{
		InventoryService: iService,
		Logger:           logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the inventory service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the inventory service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	inventoryHandler := rest.NewHandler(deps.InventoryService, deps.Logger)
	inventoryHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
