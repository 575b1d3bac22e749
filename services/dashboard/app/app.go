package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	middleware "github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/middlewares"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/utils"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/configs"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/handlers"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/services"
	"go.uber.org/zap"
)

// Components is the session state shared by every presentation adapter.
type Components struct {
	Transport  services.ScoringTransport
	Prediction services.PredictionController
	Insights   services.InsightsLoader
}

// NewComponents builds the scoring client, the prediction controller and the insights loader from cfg.
func NewComponents(logger *zap.Logger, cfg *configs.Config) Components {
	transport := services.NewScoringClient(services.ScoringClientConfig{
		Logger:     logger.Named("scoring"),
		BaseURL:    cfg.ScoringServiceAddr,
		HTTPClient: utils.NewHTTPClient(utils.WithRequestDeadlines(cfg.PredictTimeout, cfg.InsightsTimeout)),
		Throttle:   pkg.NewThrottle(cfg.MlRateLimitPerSec, cfg.MlRequestBurst, cfg.MlRequestMaxThrottleWait, logger),
	})
	return Components{
		Transport: transport,
		Prediction: services.NewPredictionController(services.PredictionControllerConfig{
			Logger:    logger.Named("prediction"),
			Transport: transport,
			Timeout:   cfg.PredictTimeout,
		}),
		Insights: services.NewInsightsLoader(services.InsightsLoaderConfig{
			Logger:    logger.Named("insights"),
			Transport: transport,
			Timeout:   cfg.InsightsTimeout,
		}),
	}
}

// NewRouter builds the Gin engine over the given components.
func NewRouter(logger *zap.Logger, comps Components) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())

	handlers.NewPredictionHandler(logger, comps.Prediction).RegisterRoutes(api)
	handlers.NewInsightsHandler(logger, comps.Insights).RegisterRoutes(api)
	handlers.NewBaseHandler(logger, comps.Transport).RegisterRoutes(r)
	return r
}

// NewApp wires dependencies, activates the insights loader and returns an *http.Server.
// It reads configuration from environment variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, error) {
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, err
	}

	comps := NewComponents(logger, cfg)
	// The insights fetch runs once, independently of any prediction.
	comps.Insights.Activate(ctx)

	logger.Info("dashboard_configured",
		zap.String("scoring_service", cfg.ScoringServiceAddr),
		zap.Duration("predict_timeout", cfg.PredictTimeout),
	)
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: NewRouter(logger, comps),
	}, nil
}
