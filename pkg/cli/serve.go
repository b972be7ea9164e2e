package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/interceptd/pkg/metrics"
	"github.com/getmockd/interceptd/pkg/requestlog"
	"github.com/getmockd/interceptd/pkg/session"
)

var (
	serveAddr     string
	serveFixtures []string
	serveMaxLog   int
	metricsAddr   string
)

// shutdownTimeout bounds graceful shutdown of the served listener.
const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve fixture routes over HTTP",
	Long: `Serve fixture routes to real HTTP clients. The request's Host header selects
the route, so point clients at this listener with a proxy setting or a hosts
file entry. A request with no matching route has its connection aborted.`,
	Example: `  interceptd serve -f fixtures/ --addr localhost:8080
  curl -H 'Host: genes.example.org' 'http://localhost:8080/api/stats?gene=TP53'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(serveFixtures) == 0 {
			return errors.New("at least one --fixtures path is required")
		}
		logger := newLogger(cmd)

		fixtures, err := loadFixtures(serveFixtures)
		if err != nil {
			return err
		}

		opts := []session.Option{
			session.WithLogger(logger),
			session.WithRequestLog(requestlog.NewMemoryStore(serveMaxLog)),
		}
		var metricsSrv *http.Server
		if metricsAddr != "" {
			reg := metrics.NewRegistry()
			opts = append(opts, session.WithObserver(metrics.NewCollector(reg)))

			mux := http.NewServeMux()
			mux.Handle("/metrics", reg.Handler())
			metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		}

		registry := session.NewRegistry(opts...)
		if err := registry.Install(fixtures...); err != nil {
			return err
		}
		defer registry.Teardown()

		if metricsSrv != nil {
			go func() {
				if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server failed", "addr", metricsAddr, "error", err)
				}
			}()
			defer func() { _ = metricsSrv.Close() }()
			logger.Info("serving metrics", "addr", metricsAddr)
		}

		ln, err := net.Listen("tcp", serveAddr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", serveAddr, err)
		}

		srv := &http.Server{
			Handler:           registry.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Serve(ln)
		}()

		logger.Info("serving fixtures", "addr", ln.Addr().String(), "routes", len(registry.Routes()))
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %d routes on http://%s\n", len(registry.Routes()), ln.Addr())

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		logger.Info("server stopped", "requests", registry.Requests().Count())
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Listen address")
	serveCmd.Flags().StringSliceVarP(&serveFixtures, "fixtures", "f", nil, "Fixture file, directory or glob (repeatable)")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics at /metrics on this address")
	serveCmd.Flags().IntVar(&serveMaxLog, "max-log-entries", requestlog.DefaultMaxEntries, "Maximum request log entries kept")
	rootCmd.AddCommand(serveCmd)
}
