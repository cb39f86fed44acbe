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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/medicaments-api/auth"
	"github.com/diewo77/medicaments-api/internal/config"
	"github.com/diewo77/medicaments-api/internal/db"
	"github.com/diewo77/medicaments-api/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Medicaments ordering API",
	Long:          `REST API for client accounts, the medicaments catalog and shopping lists.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo clients and catalog and exit",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// appEnv is what every command needs: configuration, a logger and a database.
type appEnv struct {
	cfg  *config.Config
	log  *zap.Logger
	conn *gorm.DB
}

func bootstrap(ctx context.Context) (*appEnv, error) {
	// a missing .env file is fine, the environment may already be set
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == config.DefaultJWTSecret && !cfg.App.Dev {
		log.Warn("JWT_SECRET is the development default; set it in production")
	}
	conn, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &appEnv{cfg: cfg, log: log, conn: conn}, nil
}

func (rt *appEnv) close() {
	if err := db.Close(rt.conn); err != nil {
		rt.log.Warn("closing database", zap.Error(err))
	}
	_ = rt.log.Sync()
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()
	if err := db.Migrate(rt.conn, rt.cfg); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	rt.log.Info("migrations completed")
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()
	return seed(cmd.Context(), rt)
}

func seed(ctx context.Context, rt *appEnv) error {
	res, err := db.Seed(ctx, rt.conn, auth.NewBcryptHasher(rt.cfg.Auth.BcryptCost))
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	rt.log.Info("seed completed", zap.Int("clients", res.Clients), zap.Int("products", res.Products))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := db.Migrate(rt.conn, rt.cfg); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if rt.cfg.App.Seed {
		if err := seed(ctx, rt); err != nil {
			return err
		}
	}

	app := NewApp(NewRouterConfig(rt.conn, rt.cfg, rt.log), rt.log)
	srv := &http.Server{
		Addr:         ":" + rt.cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(rt.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(rt.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(rt.cfg.Server.IdleTimeout) * time.Second,
		ErrorLog:     logging.Std(rt.log.Named("http")),
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("server starting", zap.String("port", rt.cfg.Server.Port), zap.Bool("dev", rt.cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		rt.log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.log.Error("error during shutdown", zap.Error(err))
	}
	rt.log.Info("server stopped gracefully")
	return nil
}
