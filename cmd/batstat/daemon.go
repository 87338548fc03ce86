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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/cptspacemanspiff/batstat/internal/config"
	dbussvc "github.com/cptspacemanspiff/batstat/internal/dbus"
	"github.com/cptspacemanspiff/batstat/internal/logging"
	"github.com/cptspacemanspiff/batstat/internal/metrics"
	"github.com/cptspacemanspiff/batstat/internal/powersupply"
	"github.com/cptspacemanspiff/batstat/internal/wake"
)

func NewDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Poll battery state and publish it over D-Bus and Prometheus",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runDaemon(cfg, newLogger())
		},
	}
}

// refresher rescans sysfs and pushes the result to every consumer.
type refresher struct {
	mon *powersupply.Monitor
	svc *dbussvc.Service
	log *slog.Logger
	bus *slog.Logger
}

func (r *refresher) refresh(reason string) error {
	start := time.Now()
	err := r.mon.Refresh()
	metrics.ObserveRefresh(r.mon.Current(), err, time.Since(start))
	if err != nil {
		r.log.Warn("refresh failed, keeping previous reading", "reason", reason, "err", err)
		return err
	}

	status := r.mon.Current()
	r.log.Info("sample",
		"reason", reason,
		"batteries", len(status.Batteries),
		"reading", status.String())

	if r.svc == nil {
		return nil
	}
	if changed, err := r.svc.Announce(); err != nil {
		r.bus.Error("announce reading", "err", err)
	} else if changed {
		r.bus.Debug("reading changed", "reading", status.String())
	}
	return nil
}

// run is the only place refreshes happen. It returns when stop fires.
func (r *refresher) run(ticks <-chan time.Time, wakeCh <-chan struct{}, requests <-chan chan<- error, stop <-chan os.Signal) {
	for {
		select {
		case <-ticks:
			r.refresh("tick")
		case <-wakeCh:
			r.refresh("wake")
		case result := <-requests:
			result <- r.refresh("dbus")
		case <-stop:
			return
		}
	}
}

func runDaemon(cfg *config.Config, logger *slog.Logger) error {
	batteryLog := logger.With(logging.TopicKey, "battery")
	dbusLog := logger.With(logging.TopicKey, "dbus")
	wakeLog := logger.With(logging.TopicKey, "wake")
	metricsLog := logger.With(logging.TopicKey, "metrics")

	mon, err := powersupply.NewMonitor(cfg.Sysfs.Root)
	if err != nil {
		return fmt.Errorf("initial battery scan: %w", err)
	}
	metrics.SetStatus(mon.Current())
	logger.Info("initial battery scan", "root", mon.Root(), "reading", mon.Current().String())

	r := &refresher{mon: mon, log: batteryLog, bus: dbusLog}
	var refreshRequests <-chan chan<- error

	if cfg.DBus.Enabled {
		svc := dbussvc.NewService(mon)
		conn, err := svc.Export(cfg.DBus.Bus)
		if err != nil {
			return fmt.Errorf("export dbus service: %w", err)
		}
		defer conn.Close()
		if _, err := svc.Announce(); err != nil {
			dbusLog.Error("announce reading", "err", err)
		}
		r.svc = svc
		refreshRequests = svc.RefreshRequests()
		logger.Info("D-Bus service registered", "name", dbussvc.BusName, "bus", cfg.DBus.Bus)
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{
			Addr:              cfg.Metrics.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			metricsLog.Info("starting metrics server", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
	}

	// Rescan on resume.
	var wakeCh <-chan struct{}
	wakeMon, err := wake.NewMonitor(wakeLog)
	if err != nil {
		logger.Warn("wake monitor unavailable", "err", err)
	} else {
		wakeCh = wakeMon.Wake()
		defer wakeMon.Close()
	}

	interval := time.Duration(cfg.Collection.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	logger.Info("batstat daemon started", "interval", interval)
	r.run(ticker.C, wakeCh, refreshRequests, sigCh)
	logger.Info("shutting down")
	return nil
}
