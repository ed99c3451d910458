package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	adapthttp "wellness/internal/adapter/http"
	"wellness/internal/config"
	"wellness/internal/domain"
	"wellness/internal/logger"
	"wellness/internal/metrics"
	"wellness/internal/seed"
)

type serveOptions struct {
	addr     string
	seedFile string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Addr = opts.addr
			}
			if opts.seedFile != "" {
				cfg.SeedFile = opts.seedFile
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides ADDR)")
	cmd.Flags().StringVar(&opts.seedFile, "seed", "", "YAML seed file applied before serving (overrides SEED_FILE)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc := NewServices(store, cfg, domain.SystemClock{}, log)
	if cfg.SeedFile != "" {
		f, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(ctx, f, svc.Users, svc.Challenges, log); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(reg)

	h := adapthttp.New(adapthttp.Deps{
		Users:       svc.Users,
		Challenges:  svc.Challenges,
		Enrollments: svc.Enrollments,
		Activities:  svc.Activities,
		Log:         log,
		Store:       store,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSOrigins: cfg.CORSOrigins,
	}).Handler()
	server := adapthttp.NewHTTPServer(cfg.Addr, h)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "store", cfg.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
		return err
	}
	return nil
}
