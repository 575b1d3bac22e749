package pkg

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// InitLogger builds the global Logger for the dashboard. Release mode logs JSON to stdout,
// every other gin mode uses the colored development encoder.
func InitLogger() {
	Logger = NewLogger(gin.Mode())
}

// NewLogger returns a logger configured for the given gin mode.
func NewLogger(mode string) *zap.Logger {
	var config zap.Config
	if gin.ReleaseMode == mode {
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build(zap.AddStacktrace(zap.DPanicLevel))
	if err != nil {
		panic(err)
	}
	return logger.Named("fraud-dashboard")
}
