package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tradingjournal/config"
	"tradingjournal/internal/adapters/logger"
	"tradingjournal/internal/adapters/sqlite"
	"tradingjournal/internal/app"
	"tradingjournal/internal/auth"
	"tradingjournal/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: log})
	if err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	defer repo.Close()

	jwt := auth.JWT{Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL}
	hasher := auth.PasswordHasher{Cost: cfg.BcryptCost}

	tradeSvc, err := app.NewTradeService(repo, log)
	if err != nil {
		return err
	}
	statsSvc, err := app.NewStatsService(repo, log)
	if err != nil {
		return err
	}
	userSvc, err := app.NewUserService(repo, hasher, jwt, log)
	if err != nil {
		return err
	}

	router := httpapi.Router{
		Auth:   httpapi.AuthHandler{Users: userSvc, Logger: log},
		Trades: httpapi.TradeHandler{Trades: tradeSvc, Logger: log},
		Stats:  httpapi.StatsHandler{Stats: statsSvc, Logger: log},
		AuthMW: httpapi.AuthMiddleware(jwt, repo),
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.Handler(cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "Trading journal API listening", map[string]interface{}{"addr": cfg.ListenAddr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-stop:
		log.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(ctx, "Server stopped")
	return nil
}
