package immjson

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the package logger. It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger replaces the package logger. Call it before decoding starts.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerOnce.Do(func() {})
	logger = l
}

func logFailure(op string, iss Issues) {
	if len(iss) == 0 {
		return
	}
	it := iss[0]
	Logger().Debug(op+" failed",
		zap.String("code", it.Code),
		zap.String("path", it.Path),
		zap.Int("line", it.Line),
		zap.Int("column", it.Column),
		zap.Int64("offset", it.Offset),
		zap.String("detail", it.Hint),
		zap.String("remainder", it.InputFragment),
	)
}
