// File: internal/source/source.go
package source

import (
	"context"

	"flipradar_backend/internal/listing"
)

// Source is one scraped marketplace. Search returns at most the source's
// configured item cap per call; a transient fetch failure surfaces as an
// error and is treated by the caller as zero items for that cycle.
type Source interface {
	Name() string
	Search(ctx context.Context, keywords []string) ([]listing.RawListing, error)
}
