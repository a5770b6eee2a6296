// opsinject diverts IPv4 packets off a Linux NFQUEUE and splices
// protocol-specific options sections into them, per a fixed recipe file,
// before posting a verdict back to the kernel.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/packetops/opsinject/internal/config"
	"github.com/packetops/opsinject/internal/metrics"
	"github.com/packetops/opsinject/internal/ops"
	"github.com/packetops/opsinject/internal/queue"
	"github.com/packetops/opsinject/internal/recipe"
	appversion "github.com/packetops/opsinject/internal/version"
)

// shutdownTimeout bounds how long the metrics server is given to drain
// in-flight requests during graceful shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:     "opsinject <recipe-file>",
		Short:   "Splice protocol options into NFQUEUE-diverted IPv4 packets",
		Version: appversion.Version,
		Args:    cobra.ExactArgs(1),
	}
	boundFlags := config.BindFlags(root)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		settings, err := config.Resolve(boundFlags, args)
		if err != nil {
			return err
		}
		return daemonMain(settings)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// daemonMain wires the recipe, driver, queue bridge, and metrics/HTTP
// server together and runs until a shutdown signal arrives.
func daemonMain(settings config.Settings) error {
	logger := newLogger(settings)

	logger.Info("opsinject starting",
		slog.String("version", appversion.Version),
		slog.String("protocol", settings.Protocol.String()),
		slog.Int("queue", int(settings.QueueNum)),
		slog.Bool("overwrite", settings.Overwrite),
		slog.String("metrics_addr", settings.MetricsAddr),
	)

	rec, err := recipe.Load(settings.RecipePath)
	if err != nil {
		return fmt.Errorf("load recipe: %w", err)
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	driverCfg := ops.Config{
		Protocol:      settings.Protocol,
		Overwrite:     settings.Overwrite,
		RedirectQueue: settings.RedirectQueue,
	}
	driver := ops.NewDriver(rec, driverCfg, logger)

	bridge, err := queue.OpenNFQueue(queue.NFQueueConfig{
		QueueNum:    settings.QueueNum,
		MaxQueueLen: settings.MaxQueueLen,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("open nfqueue: %w", err)
	}
	defer closeBridge(bridge, logger)

	metricsSrv := newMetricsServer(settings.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bridge.Run(gCtx, func(_ context.Context, payload []byte) ops.Verdict {
			v := driver.Process(payload)
			collector.Observe(v, len(v.Payload), false, false)
			return v
		})
	})

	lc := net.ListenConfig{}
	g.Go(func() error {
		logger.Info("metrics server listening", slog.String("addr", settings.MetricsAddr))
		return listenAndServe(gCtx, &lc, metricsSrv, settings.MetricsAddr)
	})

	g.Go(func() error {
		return runWatchdog(gCtx, logger)
	})

	notifyReady(logger)

	g.Go(func() error {
		<-gCtx.Done()
		return gracefulShutdown(gCtx, bridge, logger, metricsSrv)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	logger.Info("opsinject stopped")
	return nil
}

func closeBridge(b queue.Bridge, logger *slog.Logger) {
	if err := b.Close(); err != nil {
		logger.Warn("failed to close queue bridge", slog.String("error", err.Error()))
	}
}

func newLogger(settings config.Settings) *slog.Logger {
	level := new(slog.LevelVar)
	switch settings.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch settings.LogFormat {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func listenAndServe(ctx context.Context, lc *net.ListenConfig, srv *http.Server, addr string) error {
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

func notifyReady(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		logger.Warn("failed to notify systemd readiness", slog.String("error", err.Error()))
		return
	}
	if sent {
		logger.Info("notified systemd: READY")
	}
}

func notifyStopping(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		logger.Warn("failed to notify systemd stopping", slog.String("error", err.Error()))
		return
	}
	if sent {
		logger.Info("notified systemd: STOPPING")
	}
}

// runWatchdog sends periodic watchdog keepalives to systemd at half the
// configured interval. It returns immediately, without error, if no
// watchdog is configured.
func runWatchdog(ctx context.Context, logger *slog.Logger) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logger.Warn("failed to check systemd watchdog", slog.String("error", err.Error()))
		return nil
	}
	if interval == 0 {
		return nil
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				logger.Warn("failed to send watchdog keepalive", slog.String("error", err.Error()))
			}
		}
	}
}

func gracefulShutdown(ctx context.Context, bridge queue.Bridge, logger *slog.Logger, srv *http.Server) error {
	logger.Info("initiating graceful shutdown")
	notifyStopping(logger)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("shutdown metrics server: %w", err))
	}
	if err := bridge.Close(); err != nil {
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("close queue bridge: %w", err))
	}
	return shutdownErr
}
