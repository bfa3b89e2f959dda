// Package searchlog persists search log entries.
package searchlog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mdsearch/internal/domain/search/logentry"
)

// streamStore is the consumer interface for stream appends (ISP).
type streamStore interface {
	XAdd(ctx context.Context, stream string, maxLen int64, fields map[string]string) (string, error)
}

// StreamSink appends entries to a capped stream.
type StreamSink struct {
	store  streamStore
	stream string
	maxLen int64
}

// NewStreamSink creates a stream sink. maxLen caps the stream length
// approximately; zero keeps every entry.
func NewStreamSink(s streamStore, stream string, maxLen int64) *StreamSink {
	return &StreamSink{store: s, stream: stream, maxLen: maxLen}
}

// Write implements searchlog.Sink.
func (s *StreamSink) Write(ctx context.Context, e logentry.Entry) error {
	if _, err := s.store.XAdd(ctx, s.stream, s.maxLen, e.Fields()); err != nil {
		return fmt.Errorf("append search log %s: %w", e.ID, err)
	}
	return nil
}
