// File: internal/listing/model.go
package listing

import (
	"time"

	"flipradar_backend/internal/common"

	"gorm.io/datatypes"
)

// RawListing is the contract with the scraping collaborators: one scraped
// auction record, already normalized to EUR, before pricing and scoring.
type RawListing struct {
	Source       string     `json:"source"`
	ExternalID   string     `json:"external_id"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Category     *string    `json:"category,omitempty"`
	LocationName *string    `json:"location_name,omitempty"`
	Lat          *float64   `json:"lat,omitempty"`
	Lon          *float64   `json:"lon,omitempty"`
	PhotoURL     *string    `json:"photo_url,omitempty"`
	Currency     string     `json:"currency"`
	PriceValue   float64    `json:"price_value"`
	UnitCount    *int       `json:"unit_count,omitempty"`
	WeightKG     *float64   `json:"weight_kg,omitempty"`
	PostedAt     *time.Time `json:"posted_at,omitempty"`
}

// Listing is the persisted snapshot of a scraped record: the raw fields plus
// everything the normalizer derived. The natural key is (source, external_id);
// CreatedAt is stamped at first insert and survives every later upsert.
type Listing struct {
	common.BaseModel
	Source       string     `gorm:"type:varchar(50);not null;uniqueIndex:uq_source_external,priority:1;index"`
	ExternalID   string     `gorm:"type:varchar(200);not null;uniqueIndex:uq_source_external,priority:2"`
	URL          string     `gorm:"type:text;not null"`
	Title        string     `gorm:"type:text;not null"`
	Category     *string    `gorm:"type:varchar(100)"`
	LocationName *string    `gorm:"type:varchar(200)"`
	Lat          *float64   `gorm:"type:decimal(10,8)"`
	Lon          *float64   `gorm:"type:decimal(11,8)"`
	PhotoURL     *string    `gorm:"type:text"`
	Currency     string     `gorm:"type:varchar(10);not null;default:'EUR'"`
	PriceEUR     float64    `gorm:"not null"`
	UnitCount    *int
	WeightKG     *float64
	PostedAt     *time.Time

	PricePerUnit      *float64
	PricePerKG        *float64
	DistanceKM        *float64
	FeesPct           float64
	ShipEstimateEUR   float64
	MarginEstimateEUR float64
	FlipScore         float64 `gorm:"index"`

	Raw datatypes.JSON `gorm:"type:jsonb"`
}

func (Listing) TableName() string {
	return "listings"
}

// ListingResponse is the API shape for a scored snapshot.
type ListingResponse struct {
	ID                string     `json:"id"`
	Source            string     `json:"source"`
	ExternalID        string     `json:"external_id"`
	URL               string     `json:"url"`
	Title             string     `json:"title"`
	Category          *string    `json:"category,omitempty"`
	LocationName      *string    `json:"location_name,omitempty"`
	PhotoURL          *string    `json:"photo_url,omitempty"`
	Currency          string     `json:"currency"`
	PriceEUR          float64    `json:"price_eur"`
	UnitCount         *int       `json:"unit_count,omitempty"`
	WeightKG          *float64   `json:"weight_kg,omitempty"`
	PricePerUnit      *float64   `json:"price_per_unit,omitempty"`
	PricePerKG        *float64   `json:"price_per_kg,omitempty"`
	DistanceKM        *float64   `json:"distance_km,omitempty"`
	MarginEstimateEUR float64    `json:"margin_estimate_eur"`
	FlipScore         float64    `json:"flip_score"`
	PostedAt          *time.Time `json:"posted_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToListingResponse maps a persisted snapshot to its API representation.
func ToListingResponse(l *Listing) ListingResponse {
	return ListingResponse{
		ID:                l.ID.String(),
		Source:            l.Source,
		ExternalID:        l.ExternalID,
		URL:               l.URL,
		Title:             l.Title,
		Category:          l.Category,
		LocationName:      l.LocationName,
		PhotoURL:          l.PhotoURL,
		Currency:          l.Currency,
		PriceEUR:          l.PriceEUR,
		UnitCount:         l.UnitCount,
		WeightKG:          l.WeightKG,
		PricePerUnit:      l.PricePerUnit,
		PricePerKG:        l.PricePerKG,
		DistanceKM:        l.DistanceKM,
		MarginEstimateEUR: l.MarginEstimateEUR,
		FlipScore:         l.FlipScore,
		PostedAt:          l.PostedAt,
		CreatedAt:         l.CreatedAt,
	}
}

// TopListingsQuery is the query contract for the ranked-listings endpoint.
type TopListingsQuery struct {
	Hours int `form:"hours,default=24" binding:"omitempty,min=1,max=168"`
	Limit int `form:"limit,default=10" binding:"omitempty,min=1,max=50"`
}
