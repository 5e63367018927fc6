package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/restock-monitor/api/openapi"
	"github.com/donaldgifford/restock-monitor/internal/api/handlers"
	mw "github.com/donaldgifford/restock-monitor/internal/api/middleware"
	"github.com/donaldgifford/restock-monitor/internal/engine"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server, the Discord endpoint and the scheduler",
		Long: "Serves the HTTP API, the Discord interactions endpoint used by the\n" +
			"/pause, /resume and /status slash commands, Prometheus metrics, and\n" +
			"runs checks on the configured cron schedule.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := newServer(a)
	if err != nil {
		return err
	}

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := a.cfg.Server.Host + ":" + strconv.Itoa(a.cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", "addr", addr)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if sched != nil {
		sched.Start()
		a.log.Info("next scheduled check",
			"schedules", a.cfg.Schedule.Crons,
			"timezone", a.cfg.Schedule.Timezone,
			"next_run", sched.Next(),
		)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			a.log.Error("server error", "error", err)
		}
	}

	a.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sched != nil {
		select {
		case <-sched.Stop().Done():
		case <-shutdownCtx.Done():
			a.log.Warn("running check did not finish before shutdown")
		}
	}

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	a.log.Info("server stopped")
	return nil
}

// newServer builds the echo instance with every route registered.
func newServer(a *app) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.Recovery(a.log))
	e.Use(mw.RequestLog(a.log))
	e.Use(mw.Metrics())

	health := handlers.NewHealthHandler(a.flag)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if err := a.cfg.Interactions.RequireInteractions(); err != nil {
		a.log.Warn("discord interactions endpoint disabled", "reason", err)
	} else {
		key, err := handlers.ParsePublicKey(a.cfg.Interactions.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("interactions.public_key: %w", err)
		}
		e.POST("/discord/interactions", handlers.NewInteractionsHandler(key, a.flag, a.log).Handle)
	}

	humaCfg := huma.DefaultConfig("Restock Monitor API", Version)
	humaCfg.DocsPath = ""
	api := humaecho.New(e, humaCfg)

	handlers.RegisterCheckRoutes(api, handlers.NewCheckHandler(a.engine).WithHistory(a.engine))
	handlers.RegisterPauseRoutes(api, handlers.NewPauseHandler(a.flag))
	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotHandler(a.store, a.engine.Items()))
	openapi.RegisterRoutes(e, api)

	return e, nil
}

// newScheduler returns nil when no cron schedule is configured.
func newScheduler(a *app) (*engine.Scheduler, error) {
	if len(a.cfg.Schedule.Crons) == 0 {
		a.log.Info("no schedule configured, checks run only on demand")
		return nil, nil
	}

	loc, err := time.LoadLocation(a.cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading schedule timezone: %w", err)
	}

	sched, err := engine.NewScheduler(a.engine, a.cfg.Schedule.Crons, loc, a.log)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	return sched, nil
}
