package docsystem

import "time"

// HistoryKind names the entity whose modifications a ledger tracks.
type HistoryKind string

const (
	HistoryKindDocument HistoryKind = "document"
	HistoryKindFile     HistoryKind = "file"
)

// Timestamp normalizes a time to UTC with millisecond precision, the
// granularity history entries are stored and compared at.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
