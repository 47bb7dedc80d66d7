package schema

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the schema package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the schema package's logger.
// This must be called before any schema is resolved.
// A nil logger restores the no-op default.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

func logResolved(s *Schema) {
	Logger().Debug("resolved schema",
		zap.String("type", s.Name),
		zap.String("format", s.Format().String()),
		zap.Int("byte_length", s.ByteLength()),
		zap.Bool("bitfield", s.IsBitfield()),
	)
}
