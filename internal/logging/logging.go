package logging

import (
	"go.uber.org/zap"
)

// Logger is the process-wide logger and the default for components built
// without one. It discards output until Init runs.
var Logger = zap.NewNop().Sugar()

// Init builds a console logger. debug selects the development config;
// otherwise only warnings and errors are written.
func Init(debug bool) *zap.SugaredLogger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialise logger: " + err.Error())
	}
	Logger = logger.Sugar()
	return Logger
}
