package searchlog

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/domain/search/logentry"
)

// LogSink writes entries to the application log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a log sink.
func NewLogSink(l *zap.Logger) *LogSink {
	return &LogSink{logger: l}
}

// Write implements searchlog.Sink.
func (s *LogSink) Write(_ context.Context, e logentry.Entry) error {
	s.logger.Info("search",
		zap.String("id", e.ID),
		zap.Time("time", e.Time),
		zap.String("query", e.Query),
		zap.Int("hits", e.Hits),
		zap.String("sort", e.Sort),
		zap.String("spatial", e.SpatialWKT),
		zap.String("origin", e.Origin),
		zap.String("language", e.Language),
	)
	return nil
}
