// File: internal/listing/normalizer.go
package listing

import (
	"encoding/json"
	"fmt"
	"strings"

	"flipradar_backend/internal/economics"
	"flipradar_backend/internal/geo"
)

// Resale multipliers are a deliberately coarse stand-in for a real
// market-comparables model.
const (
	resaleMultiplierDefault  = 1.20
	resaleMultiplierFootwear = 1.35
)

// Normalize converts one raw scraped record into a fully priced and scored
// snapshot relative to a reference location. It is a pure function: no I/O,
// no side effects, and missing optional fields never produce an error. The
// only rejected inputs are a negative price and a missing title or URL.
func Normalize(raw RawListing, refLat, refLon float64, econ economics.EconomicsConfig) (*Listing, error) {
	if raw.PriceValue < 0 {
		return nil, fmt.Errorf("listing %s/%s: negative price %.2f", raw.Source, raw.ExternalID, raw.PriceValue)
	}
	if strings.TrimSpace(raw.Title) == "" {
		return nil, fmt.Errorf("listing %s/%s: missing title", raw.Source, raw.ExternalID)
	}
	if strings.TrimSpace(raw.URL) == "" {
		return nil, fmt.Errorf("listing %s/%s: missing url", raw.Source, raw.ExternalID)
	}

	distanceKM := geo.HaversineKM(refLat, refLon, raw.Lat, raw.Lon)

	var pricePerUnit, pricePerKG *float64
	if raw.UnitCount != nil && *raw.UnitCount > 0 {
		v := raw.PriceValue / float64(*raw.UnitCount)
		pricePerUnit = &v
	}
	if raw.WeightKG != nil && *raw.WeightKG > 0 {
		v := raw.PriceValue / *raw.WeightKG
		pricePerKG = &v
	}

	fees := econ.ApplyFees(raw.PriceValue)
	shipping := econ.EstimateShippingEUR(raw.WeightKG)
	totalCost := raw.PriceValue + fees + shipping

	resaleMultiplier := resaleMultiplierDefault
	if hasFootwearSignal(raw.Category, raw.Title) {
		resaleMultiplier = resaleMultiplierFootwear
	}
	resaleGross := raw.PriceValue * resaleMultiplier
	margin := resaleGross - totalCost

	marginPct := 0.0
	if totalCost > 0 {
		marginPct = margin / totalCost
	}

	flipScore := (0.6*marginPct + 0.4*(margin/100.0)) * distancePenalty(distanceKM)
	if flipScore < 0 {
		flipScore = 0
	}

	currency := raw.Currency
	if currency == "" {
		currency = "EUR"
	}

	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("listing %s/%s: encoding raw payload: %w", raw.Source, raw.ExternalID, err)
	}

	return &Listing{
		Source:            raw.Source,
		ExternalID:        raw.ExternalID,
		URL:               raw.URL,
		Title:             strings.TrimSpace(raw.Title),
		Category:          raw.Category,
		LocationName:      raw.LocationName,
		Lat:               raw.Lat,
		Lon:               raw.Lon,
		PhotoURL:          raw.PhotoURL,
		Currency:          currency,
		PriceEUR:          raw.PriceValue,
		UnitCount:         raw.UnitCount,
		WeightKG:          raw.WeightKG,
		PostedAt:          raw.PostedAt,
		PricePerUnit:      pricePerUnit,
		PricePerKG:        pricePerKG,
		DistanceKM:        distanceKM,
		FeesPct:           econ.FeesPct,
		ShipEstimateEUR:   shipping,
		MarginEstimateEUR: margin,
		FlipScore:         flipScore,
		Raw:               rawJSON,
	}, nil
}

// hasFootwearSignal reports whether the category or title carries the
// footwear marker that bumps the resale multiplier.
func hasFootwearSignal(category *string, title string) bool {
	if category != nil && strings.Contains(strings.ToLower(*category), "sneaker") {
		return true
	}
	return strings.Contains(strings.ToLower(title), "sneaker")
}

// distancePenalty discounts the score for far-away pickups. Unknown
// distances are not penalized.
func distancePenalty(distanceKM *float64) float64 {
	if distanceKM == nil {
		return 1.0
	}
	switch {
	case *distanceKM > 1500:
		return 0.6
	case *distanceKM > 800:
		return 0.75
	case *distanceKM > 400:
		return 0.85
	default:
		return 1.0
	}
}
