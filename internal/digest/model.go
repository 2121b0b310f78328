// File: internal/digest/model.go
package digest

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeenMark is the durable fact "user U has been shown listing L". Rows are
// append-only; the unique pair constraint is the sole mechanism preventing a
// listing from being re-delivered to the same user in a later digest.
type SeenMark struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:uq_user_listing_seen,priority:1"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_user_listing_seen,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
}

func (SeenMark) TableName() string {
	return "user_seen"
}

func (m *SeenMark) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}
