package system

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/logger"
	"github.com/julianstephens/crewplan/internal/telemetry"
)

// DaemonCmd periodically assigns planned tasks and serves Prometheus metrics.
type DaemonCmd struct {
	Once        bool          `help:"Run a single optimization pass and exit."`
	Interval    time.Duration `help:"Override the configured optimization interval."`
	MetricsAddr string        `help:"Override the configured metrics listen address. Empty disables the endpoint."`
}

func (cmd *DaemonCmd) Run(ctx *cli.Context) error {
	interval := ctx.Config.Daemon.Interval
	if cmd.Interval > 0 {
		interval = cmd.Interval
	}
	addr := ctx.Config.Telemetry.MetricsAddr
	if cmd.MetricsAddr != "" {
		addr = cmd.MetricsAddr
	}

	runCtx, stop := signal.NotifyContext(ctx.Base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, err := telemetry.InitMeterProvider(runCtx, constants.AppName)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := telemetry.InitMetrics(); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if cmd.Once {
		return optimizePass(runCtx, ctx)
	}

	release, err := acquireDaemonLock(ctx.Config.Home, addr)
	if err != nil {
		return err
	}
	defer release()

	if addr != "" {
		srv := newMetricsServer(addr, handler)
		go func() {
			logger.Info("Serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	fmt.Printf("crewplan daemon running every %s (Ctrl+C to stop)\n", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := optimizePass(runCtx, ctx); err != nil {
			logger.Error("Optimization pass failed", "error", err)
		}
		select {
		case <-runCtx.Done():
			fmt.Println("Shutting down.")
			return nil
		case <-ticker.C:
		}
	}
}

func newMetricsServer(addr string, metrics http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", otelhttp.NewHandler(metrics, "metrics"))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// optimizePass assigns unassigned planned tasks over the configured horizon.
func optimizePass(runCtx context.Context, ctx *cli.Context) error {
	now := time.Now().In(ctx.Location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, ctx.Location)
	end := start.AddDate(0, 0, ctx.Config.Daemon.HorizonDays)

	ctx.PerformAutomaticBackup()
	res, err := ctx.Scheduler.Optimize(runCtx, start, end)
	if err != nil {
		return err
	}
	logger.Info("Optimization pass finished", "assigned", res.Assigned, "failed", res.Failed)
	fmt.Printf("[%s] %s\n", now.Format(constants.DateTimeFormat), res.Message)
	return nil
}
