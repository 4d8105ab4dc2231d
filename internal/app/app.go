package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/consultsite/internal/config"
	"github.com/you/consultsite/internal/infrastructure/auth"
	"github.com/you/consultsite/internal/infrastructure/database"
	"github.com/you/consultsite/internal/logger"
)

const (
	flowSweepInterval = time.Minute
	shutdownTimeout   = 10 * time.Second
)

// Run serves the site until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	c, err := NewContainer(ctx, cfg, WithSharedProvider())
	if err != nil {
		return err
	}
	defer c.Close()

	go c.Flows.Run(ctx, flowSweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Migrate creates the tables and seeds the default record policies
func Migrate(cfg *config.Config) error {
	db, err := database.Open(cfg.DBDriver, cfg.DSN)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	cas, err := auth.NewCasbinService(db, cfg.CasbinModelPath)
	if err != nil {
		return err
	}
	added, err := cas.Seed(auth.DefaultRecordPolicies)
	if err != nil {
		return err
	}
	logger.Info("migration complete", zap.Int("policies_added", added))
	return nil
}
