package configs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds application configuration for the dashboard.
type Config struct {
	Port                     string        `mapstructure:"PORT" validate:"required,numeric"`
	ScoringServiceAddr       string        `mapstructure:"SCORING_SERVICE_ADDR" validate:"required,url"`
	PredictTimeout           time.Duration `mapstructure:"PREDICT_TIMEOUT" validate:"gt=0"`
	InsightsTimeout          time.Duration `mapstructure:"INSIGHTS_TIMEOUT" validate:"gt=0"`
	MlRateLimitPerSec        int           `mapstructure:"ML_RATE_LIMIT_PER_SEC" validate:"min=0"` // 0 disables throttling
	MlRequestBurst           int           `mapstructure:"ML_REQUEST_BURST" validate:"min=1"`
	MlRequestMaxThrottleWait time.Duration `mapstructure:"ML_REQUEST_MAX_THROTTLE_WAIT" validate:"gte=0"` // fail fast if a token is further away than this
}

// Load reads configuration from an optional .env file, the APP_* environment and an optional yaml file.
func Load(logger *zap.Logger) (*Config, error) {
	// godotenv never overrides variables already set in the process
	_ = godotenv.Load()

	viper.SetEnvPrefix("app")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("SCORING_SERVICE_ADDR", "http://127.0.0.1:8000")
	viper.SetDefault("PREDICT_TIMEOUT", "10s")
	viper.SetDefault("INSIGHTS_TIMEOUT", "10s")
	viper.SetDefault("ML_RATE_LIMIT_PER_SEC", "5")
	viper.SetDefault("ML_REQUEST_BURST", "5")
	viper.SetDefault("ML_REQUEST_MAX_THROTTLE_WAIT", "2s")

	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running_in_test_mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running_in_development_mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./services/dashboard/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, formatConfigErrors(logger, err)
	}
	return &cfg, nil
}
