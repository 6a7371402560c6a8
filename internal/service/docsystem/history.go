package docsystem

import (
	"context"
	"time"

	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"
)

// HistoryLedger is the append-only modification log of one entity kind
type HistoryLedger struct {
	repo docsysRepo.HistoryRepository
	now  func() time.Time
}

// NewHistoryLedger wraps a history repository
func NewHistoryLedger(repo docsysRepo.HistoryRepository, now func() time.Time) *HistoryLedger {
	if now == nil {
		now = time.Now
	}
	return &HistoryLedger{repo: repo, now: now}
}

// Touch appends the current time for ownerID and returns the stored timestamp
func (l *HistoryLedger) Touch(ctx context.Context, ownerID string) (time.Time, error) {
	ts := models.Timestamp(l.now())
	if err := l.repo.Append(ctx, ownerID, ts); err != nil {
		return time.Time{}, err
	}
	return ts, nil
}

// Append records an explicit timestamp
func (l *HistoryLedger) Append(ctx context.Context, ownerID string, ts time.Time) error {
	return l.repo.Append(ctx, ownerID, models.Timestamp(ts))
}

// All returns ownerID's history, newest first
func (l *HistoryLedger) All(ctx context.Context, ownerID string) ([]time.Time, error) {
	return l.repo.List(ctx, ownerID)
}

// Latest returns the newest entry, or nil when ownerID has no history
func (l *HistoryLedger) Latest(ctx context.Context, ownerID string) (*time.Time, error) {
	history, err := l.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return models.Latest(history), nil
}

// Purge removes the history of the given owners; only used when the owners are deleted
func (l *HistoryLedger) Purge(ctx context.Context, ownerIDs ...string) error {
	return l.repo.DeleteByOwners(ctx, ownerIDs...)
}
