// File: internal/source/vavato.go
package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"flipradar_backend/internal/listing"
)

const vavatoBaseURL = "https://www.vavato.com"

// VavatoClient searches vavato.com lot listings.
type VavatoClient struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxItems   int
}

// NewVavatoClient creates a Vavato source with a bounded per-call timeout.
func NewVavatoClient(timeout time.Duration, maxItems int) *VavatoClient {
	return &VavatoClient{
		BaseURL:    vavatoBaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		MaxItems:   maxItems,
	}
}

var _ Source = (*VavatoClient)(nil)

func (c *VavatoClient) Name() string {
	return "vavato"
}

type vavatoSearchPage struct {
	Props struct {
		PageProps struct {
			SearchResult struct {
				Items []vavatoItem `json:"items"`
			} `json:"searchResult"`
		} `json:"pageProps"`
	} `json:"props"`
}

type vavatoItem struct {
	UUID         string   `json:"uuid"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	CategorySlug string   `json:"categorySlug"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	City         string   `json:"locationCity"`
	Lat          *float64 `json:"locationLat"`
	Lon          *float64 `json:"locationLng"`
	HighestBid   float64  `json:"highestBidAmount"`
	CurrencyCode string   `json:"currencyCode"`
	Pieces       *int     `json:"pieces"`
}

func (c *VavatoClient) Search(ctx context.Context, keywords []string) ([]listing.RawListing, error) {
	var out []listing.RawListing
	seen := make(map[string]struct{})

	for _, kw := range keywords {
		if len(out) >= c.MaxItems {
			break
		}
		pageURL := c.BaseURL + "/en/search?q=" + url.QueryEscape(kw)
		var page vavatoSearchPage
		if err := fetchNextData(ctx, c.HTTPClient, pageURL, &page); err != nil {
			// Keep whatever earlier keywords already produced.
			return out, fmt.Errorf("searching %q: %w", kw, err)
		}
		for _, item := range page.Props.PageProps.SearchResult.Items {
			if len(out) >= c.MaxItems {
				break
			}
			if item.UUID == "" || item.Name == "" {
				continue
			}
			if _, dup := seen[item.UUID]; dup {
				continue
			}
			seen[item.UUID] = struct{}{}
			out = append(out, c.toRaw(item))
		}
	}
	return out, nil
}

func (c *VavatoClient) toRaw(item vavatoItem) listing.RawListing {
	raw := listing.RawListing{
		Source:     c.Name(),
		ExternalID: item.UUID,
		URL:        c.BaseURL + "/en/l/" + item.Slug + "/" + item.UUID,
		Title:      item.Name,
		Currency:   item.CurrencyCode,
		PriceValue: item.HighestBid,
		Lat:        item.Lat,
		Lon:        item.Lon,
		UnitCount:  item.Pieces,
	}
	if raw.Currency == "" {
		raw.Currency = "EUR"
	}
	if item.CategorySlug != "" {
		raw.Category = &item.CategorySlug
	}
	if item.City != "" {
		raw.LocationName = &item.City
	}
	if item.ThumbnailURL != "" {
		raw.PhotoURL = &item.ThumbnailURL
	}
	return raw
}
