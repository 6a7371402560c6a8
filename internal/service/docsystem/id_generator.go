package docsystem

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ExistsFunc reports whether id is already a primary key in the target table
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// IDGenerator produces random v4 UUIDs that are not yet used in a table.
// It probes until an unused value is found; there is no retry limit because a
// v4 collision is practically impossible at any realistic table size.
type IDGenerator struct {
	newID func() string
}

// NewIDGenerator creates a generator backed by crypto-random v4 UUIDs
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{newID: uuid.NewString}
}

// Generate returns an id for which exists reports false
func (g *IDGenerator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		id := g.newID()
		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("probe id: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
}
