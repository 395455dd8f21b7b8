package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/unitgrid"
	"github.com/aretw0/unitgrid/internal/config"
	"github.com/aretw0/unitgrid/internal/logging"
	"github.com/aretw0/unitgrid/internal/presentation/tui"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the project API and live update streams. Settings come from --config,
then UNITGRID_* environment variables, then flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyServeFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logger := logging.NewWithOptions(logging.Options{Level: level, Format: cfg.Log.Format})

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.ErrOrStderr(), unitgrid.Version)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           a.handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Starting unitgrid server", "addr", srv.Addr, "store", cfg.Store.Kind, "redis", cfg.Redis.Addr != "")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})

		if a.bus != nil {
			done, err := a.bus.Forward(gctx, func(msg domain.UpdateMessage) {
				a.hub.Broadcast(msg)
			})
			if err != nil {
				stop()
				_ = srv.Close()
				_ = g.Wait()
				return err
			}
			g.Go(func() error {
				<-done
				if gctx.Err() == nil {
					return errors.New("update bus stopped")
				}
				return nil
			})
		}

		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			// Open event streams only end when the hub closes them.
			a.hub.Close()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("unitgrid server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (default :8080)")
	serveCmd.Flags().String("store", "", "Project store: memory, file, redis, sqlite or postgres")
	serveCmd.Flags().String("store-path", "", "Directory of the file store")
	serveCmd.Flags().String("dsn", "", "DSN of the sqlite or postgres store")
	serveCmd.Flags().String("redis-addr", "", "Redis address; enables the update bus and distributed locks")
	serveCmd.Flags().String("secret", "", "JWT signing secret")
	serveCmd.Flags().String("log-level", "", "debug, info, warn or error")
	serveCmd.Flags().String("log-format", "", "text or json")
	serveCmd.Flags().Duration("heartbeat", 0, "Event-stream heartbeat interval")
	serveCmd.Flags().BoolP("quiet", "q", false, "Skip the banner")
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	set("addr", &cfg.Addr)
	set("store", &cfg.Store.Kind)
	set("store-path", &cfg.Store.Path)
	set("dsn", &cfg.Store.DSN)
	set("redis-addr", &cfg.Redis.Addr)
	set("log-level", &cfg.Log.Level)
	set("log-format", &cfg.Log.Format)
	if cmd.Flags().Changed("heartbeat") {
		cfg.SSE.Heartbeat, _ = cmd.Flags().GetDuration("heartbeat")
	}
}
