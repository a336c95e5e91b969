package log

import (
	"sync"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger
var once sync.Once

// InitLogger sets up the process-wide sugared logger. Subsequent calls
// are no-ops.
func InitLogger() {
	once.Do(func() {
		logger, err := zap.NewDevelopment()
		if err != nil {
			logger = zap.NewNop()
		}
		log = logger.Sugar()
	})
}

func Log() *zap.SugaredLogger {
	return log
}

// Sync flushes buffered entries. Called on shutdown.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
