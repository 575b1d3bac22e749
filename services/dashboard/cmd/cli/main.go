// Command fraudctl drives the prediction controller and insights loader from a terminal.
package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/app"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/configs"
	"go.uber.org/zap"
)

func main() {
	logger := pkg.NewLogger(gin.Mode())
	defer logger.Sync()

	root := newRootCmd(logger, func(addr string) (app.Components, error) {
		cfg, err := configs.Load(logger)
		if err != nil {
			return app.Components{}, err
		}
		if addr != "" {
			cfg.ScoringServiceAddr = addr
		}
		return app.NewComponents(logger, cfg), nil
	})
	if err := root.Execute(); err != nil {
		logger.Debug("command_failed", zap.Error(err))
		os.Exit(1)
	}
}
