// File: internal/digest/repository.go
package digest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeenRepository persists the per-(user, listing) delivery facts.
type SeenRepository interface {
	// SeenListingIDs returns the set of listing ids already shown to a user.
	SeenListingIDs(ctx context.Context, userID int64) (map[uuid.UUID]struct{}, error)
	// MarkSeen records that a batch of listings was delivered to a user, in
	// one transaction. Marks that already exist are left untouched.
	MarkSeen(ctx context.Context, userID int64, listingIDs []uuid.UUID) error
}

type gormSeenRepository struct {
	db *gorm.DB
}

// NewGORMSeenRepository creates a new GORM seen-mark repository.
func NewGORMSeenRepository(db *gorm.DB) SeenRepository {
	return &gormSeenRepository{db: db}
}

func (r *gormSeenRepository) SeenListingIDs(ctx context.Context, userID int64) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&SeenMark{}).
		Where("user_id = ?", userID).
		Pluck("listing_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("fetching seen listings for user %d: %w", userID, err)
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, nil
}

func (r *gormSeenRepository) MarkSeen(ctx context.Context, userID int64, listingIDs []uuid.UUID) error {
	if len(listingIDs) == 0 {
		return nil
	}
	marks := make([]SeenMark, 0, len(listingIDs))
	for _, id := range listingIDs {
		marks = append(marks, SeenMark{UserID: userID, ListingID: id})
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// DoNothing keeps the marks append-only under overlapping cycles.
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marks).Error
	})
	if err != nil {
		return fmt.Errorf("marking %d listings seen for user %d: %w", len(listingIDs), userID, err)
	}
	return nil
}
