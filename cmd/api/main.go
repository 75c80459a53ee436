package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"confirmflow/config"
	"confirmflow/confirm"
	"confirmflow/order"
	"confirmflow/present"
)

const shutdownTimeout = 10 * time.Second

// app carries the state shared by the commands once the root pre-run has
// loaded the configuration and built the logger.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "confirmflow",
		Short: "Embroidery order confirmation page",
		Long: `confirmflow serves the page customers use to review an embroidery order
from the OrdenesBordado sheet and confirm it or request changes.

Run without arguments to start the HTTP server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			a.logger, err = newLogger(cfg.Logging, a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "confirmflow.yaml", "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the confirmation page server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "lookup [pedido]",
		Short: "Print one order the way the page shows it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.lookup(cmd.Context(), cmd, args[0])
		},
	})

	return root
}

func newLogger(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

func (a *app) newImageChecker() present.ImageChecker {
	if !a.cfg.Attachments.Probe {
		return present.ExtensionChecker{}
	}
	return present.NewProbeChecker(http.DefaultClient, a.cfg.GetProbeTimeout())
}

func (a *app) newSigner() (*confirm.Signer, error) {
	secret := a.cfg.Form.TokenSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate form token secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		a.logger.Warn("form token secret not configured; forms expire on restart")
	}
	return confirm.NewSigner(secret, a.cfg.GetTokenTTL()), nil
}

func (a *app) serve(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	connector, closeSource, err := newConnector(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer closeSource()

	signer, err := a.newSigner()
	if err != nil {
		return err
	}

	srv, err := NewServer(
		order.NewService(connector, a.logger),
		present.NewPresenter(a.newImageChecker(), a.logger),
		confirm.NewFlow(),
		signer,
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	httpServer := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  a.cfg.GetReadTimeout(),
		WriteTimeout: a.cfg.GetWriteTimeout(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *app) lookup(ctx context.Context, cmd *cobra.Command, pedido string) error {
	if order.IsBlankID(pedido) {
		return fmt.Errorf("%s: %w", describe(order.ErrBlankID, pedido).Title, order.ErrBlankID)
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	connector, closeSource, err := newConnector(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer closeSource()

	o, err := order.NewService(connector, a.logger).Lookup(ctx, pedido)
	if err != nil {
		f := describe(err, pedido)
		return fmt.Errorf("%s: %w", f.Title, err)
	}

	view := present.NewPresenter(a.newImageChecker(), a.logger).Render(ctx, o)
	return present.WriteText(cmd.OutOrStdout(), view)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
