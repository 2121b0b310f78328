// File: internal/listing/repository.go
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Repository defines the interface for listing persistence.
type Repository interface {
	// Upsert writes one snapshot keyed by (source, external_id). An existing
	// row keeps its identity and original CreatedAt; everything else is
	// overwritten.
	Upsert(ctx context.Context, snapshot *Listing) error
	// UpsertMany writes a batch of snapshots in a single transaction. The
	// whole batch commits or rolls back together.
	UpsertMany(ctx context.Context, snapshots []*Listing) (int, error)
	FindByKey(ctx context.Context, source, externalID string) (*Listing, error)
	// Recent returns all snapshots with created_at >= since.
	Recent(ctx context.Context, since time.Time) ([]Listing, error)
	// TopRanked returns recent snapshots ordered by flip score descending,
	// newest-first on ties. The ordering is deterministic.
	TopRanked(ctx context.Context, since time.Time, limit int) ([]Listing, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM listing repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Upsert(ctx context.Context, snapshot *Listing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertTx(tx, snapshot)
	})
}

func (r *gormRepository) UpsertMany(ctx context.Context, snapshots []*Listing) (int, error) {
	count := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, snap := range snapshots {
			if err := upsertTx(tx, snap); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert listing batch: %w", err)
	}
	return count, nil
}

// upsertTx performs the find-or-insert inside the caller's transaction so
// concurrent writes of the same key serialize at the store.
func upsertTx(tx *gorm.DB, snapshot *Listing) error {
	var existing Listing
	err := tx.Where("source = ? AND external_id = ?", snapshot.Source, snapshot.ExternalID).
		First(&existing).Error
	switch {
	case err == nil:
		// Carry over the identity and the original CreatedAt; Save then
		// overwrites every mutable field in place.
		snapshot.ID = existing.ID
		snapshot.CreatedAt = existing.CreatedAt
		if err := tx.Save(snapshot).Error; err != nil {
			return fmt.Errorf("updating %s/%s: %w", snapshot.Source, snapshot.ExternalID, err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		snapshot.CreatedAt = time.Now().UTC()
		if err := tx.Create(snapshot).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
				// Lost a race against an overlapping cycle. The batch rolls
				// back and the next scheduled run re-ingests it.
				return fmt.Errorf("concurrent insert of %s/%s: %w", snapshot.Source, snapshot.ExternalID, err)
			}
			return fmt.Errorf("inserting %s/%s: %w", snapshot.Source, snapshot.ExternalID, err)
		}
		return nil
	default:
		return fmt.Errorf("looking up %s/%s: %w", snapshot.Source, snapshot.ExternalID, err)
	}
}

func (r *gormRepository) FindByKey(ctx context.Context, source, externalID string) (*Listing, error) {
	var l Listing
	err := r.db.WithContext(ctx).Where("source = ? AND external_id = ?", source, externalID).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("finding listing %s/%s: %w", source, externalID, err)
	}
	return &l, nil
}

func (r *gormRepository) Recent(ctx context.Context, since time.Time) ([]Listing, error) {
	var listings []Listing
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("fetching recent listings: %w", err)
	}
	return listings, nil
}

func (r *gormRepository) TopRanked(ctx context.Context, since time.Time, limit int) ([]Listing, error) {
	var listings []Listing
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("flip_score DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("fetching top ranked listings: %w", err)
	}
	return listings, nil
}
