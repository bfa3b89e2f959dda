package searchlog

import (
	"context"
	"time"

	"github.com/kailas-cloud/mdsearch/internal/domain/search/logentry"
)

// mockStreamStore implements the consumer interface for tests.
type mockStreamStore struct {
	xaddFn func(ctx context.Context, stream string, maxLen int64, fields map[string]string) (string, error)
}

func (m *mockStreamStore) XAdd(ctx context.Context, stream string, maxLen int64, fields map[string]string) (string, error) {
	if m.xaddFn != nil {
		return m.xaddFn(ctx, stream, maxLen, fields)
	}
	return "1-0", nil
}

func testEntry() logentry.Entry {
	return logentry.Entry{
		ID:       "6a1f",
		Time:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Query:    "+any:water",
		Hits:     12,
		Sort:     "<score>",
		Origin:   "n",
		Language: "eng",
	}
}
