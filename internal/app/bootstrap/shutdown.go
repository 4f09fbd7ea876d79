// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work, then disconnects MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if bg := deps.Background; bg != nil {
		if bg.Cleanup != nil {
			bg.Cleanup.Stop()
		}
		if bg.Limiter != nil {
			bg.Limiter.Stop()
		}
		if bg.stopHub != nil {
			logger.Info("stopping chat hub", zap.Int64("clients", bg.Hub.ClientCount()))
			bg.stopHub()
		}
	}

	if deps.FacultrackMongoClient != nil {
		logger.Info("disconnecting FacultTrack MongoDB client")
		if err := deps.FacultrackMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
