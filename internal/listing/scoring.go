// File: internal/listing/scoring.go
package listing

import "time"

// RecencyBoost rewards freshly ingested listings when ranking a digest.
func RecencyBoost(createdAt time.Time, now time.Time) float64 {
	age := now.Sub(createdAt)
	switch {
	case age < 6*time.Hour:
		return 1.15
	case age < 24*time.Hour:
		return 1.08
	case age < 72*time.Hour:
		return 1.02
	default:
		return 1.0
	}
}

// FinalRankScore is the digest ordering key: flip score scaled by recency.
func FinalRankScore(l *Listing, now time.Time) float64 {
	return l.FlipScore * RecencyBoost(l.CreatedAt, now)
}
