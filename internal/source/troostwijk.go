// File: internal/source/troostwijk.go
package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"flipradar_backend/internal/listing"
)

const troostwijkBaseURL = "https://www.troostwijkauctions.com"

// TroostwijkClient searches troostwijkauctions.com lot listings.
type TroostwijkClient struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxItems   int
}

// NewTroostwijkClient creates a Troostwijk source with a bounded per-call timeout.
func NewTroostwijkClient(timeout time.Duration, maxItems int) *TroostwijkClient {
	return &TroostwijkClient{
		BaseURL:    troostwijkBaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		MaxItems:   maxItems,
	}
}

var _ Source = (*TroostwijkClient)(nil)

func (c *TroostwijkClient) Name() string {
	return "troostwijk"
}

type trooSearchPage struct {
	Props struct {
		PageProps struct {
			Lots []trooLot `json:"lots"`
		} `json:"pageProps"`
	} `json:"props"`
}

type trooLot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URLSlug  string `json:"urlSlug"`
	Category string `json:"categoryName"`
	Image    string `json:"image"`
	Location struct {
		City      string   `json:"city"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"location"`
	CurrentBid struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"currentBidAmount"`
	LotCount *int     `json:"lotCount"`
	WeightKG *float64 `json:"weightKg"`
	StartsAt *int64   `json:"startDate"`
}

func (c *TroostwijkClient) Search(ctx context.Context, keywords []string) ([]listing.RawListing, error) {
	var out []listing.RawListing
	seen := make(map[string]struct{})

	for _, kw := range keywords {
		if len(out) >= c.MaxItems {
			break
		}
		pageURL := c.BaseURL + "/en/l/?query=" + url.QueryEscape(kw)
		var page trooSearchPage
		if err := fetchNextData(ctx, c.HTTPClient, pageURL, &page); err != nil {
			// Keep whatever earlier keywords already produced.
			return out, fmt.Errorf("searching %q: %w", kw, err)
		}
		for _, lot := range page.Props.PageProps.Lots {
			if len(out) >= c.MaxItems {
				break
			}
			if lot.ID == "" || lot.Title == "" {
				continue
			}
			if _, dup := seen[lot.ID]; dup {
				continue
			}
			seen[lot.ID] = struct{}{}
			out = append(out, c.toRaw(lot))
		}
	}
	return out, nil
}

func (c *TroostwijkClient) toRaw(lot trooLot) listing.RawListing {
	raw := listing.RawListing{
		Source:     c.Name(),
		ExternalID: lot.ID,
		URL:        c.BaseURL + "/en/l/" + lot.URLSlug,
		Title:      lot.Title,
		Currency:   lot.CurrentBid.Currency,
		PriceValue: lot.CurrentBid.Amount,
		Lat:        lot.Location.Latitude,
		Lon:        lot.Location.Longitude,
		UnitCount:  lot.LotCount,
		WeightKG:   lot.WeightKG,
	}
	if raw.Currency == "" {
		raw.Currency = "EUR"
	}
	if lot.Category != "" {
		raw.Category = &lot.Category
	}
	if lot.Location.City != "" {
		raw.LocationName = &lot.Location.City
	}
	if lot.Image != "" {
		raw.PhotoURL = &lot.Image
	}
	if lot.StartsAt != nil {
		posted := time.Unix(*lot.StartsAt, 0).UTC()
		raw.PostedAt = &posted
	}
	return raw
}
