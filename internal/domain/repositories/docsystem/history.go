package docsystem

import (
	"context"
	"time"
)

// HistoryRepository is an append-only timestamp log for one entity kind.
// Document and file histories are separate instances over separate tables.
type HistoryRepository interface {
	// Append records a modification of ownerID
	Append(ctx context.Context, ownerID string, modifiedAt time.Time) error

	// List returns ownerID's timestamps, newest first (ties: latest insert first)
	List(ctx context.Context, ownerID string) ([]time.Time, error)

	// DeleteByOwners removes the entries of the given owners (cascade of owner deletion only)
	DeleteByOwners(ctx context.Context, ownerIDs ...string) error
}
