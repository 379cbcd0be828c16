package internal

import (
	"context"
	"fmt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"onegoodthing/internal/controllers"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/statistic"
	"onegoodthing/internal/statistic/interfaces"
	"onegoodthing/internal/storage"
	"onegoodthing/internal/structures"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

type App struct {
	WebServer *http.Server
}

// NewHandler assembles the outer mux. Health and metrics stay public,
// everything under /api/ needs a bearer token.
func NewHandler(conf *structures.Config, router providers.RouterProviderInterface, healthController *controllers.HealthController, auth providers.AuthProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) http.Handler {
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	api := providers.MetricsMiddleware(metrics, apiMux, providers.AuthMiddleware(auth, logger, apiMux))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/api/", api)
	return mux
}

func NewApp(conf *structures.Config, logger providers.Logger, handler http.Handler, scheduler interfaces.SchedulerInterface, fileManager *statistic.FileManager, store storage.Store) (*App, error) {
	defer logger.Close()
	defer fileManager.Close()
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Close %s store: %s", store.Driver(), err)
		}
	}()

	logger.Infof(providers.TypeApp, "Starting %s with %s storage", conf.AppName, store.Driver())
	err := scheduler.Restore()
	if err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}

	app := &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      handler,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	if err = scheduler.Init(); err != nil {
		return nil, err
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		scheduler.Stop()
		return nil, fmt.Errorf("server error: %w", err)
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}
	err = scheduler.Persist()
	if err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}
