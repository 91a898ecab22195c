package logsvc

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/aula/core"
)

// NewZapLogger builds the process logger: human readable in debug, JSON otherwise.
func NewZapLogger(name string, conf *core.Config) (*zap.Logger, error) {
	var config zap.Config

	if conf.Debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	config.OutputPaths = []string{"stdout"}

	logger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return logger.Named(name).With(zap.String("env", conf.Env), zap.String("build", conf.Build)), nil
}
