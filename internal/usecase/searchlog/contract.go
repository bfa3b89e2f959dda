package searchlog

import (
	"context"

	"github.com/kailas-cloud/mdsearch/internal/domain/search/logentry"
)

// Sink persists search log entries.
type Sink interface {
	Write(ctx context.Context, e logentry.Entry) error
}
