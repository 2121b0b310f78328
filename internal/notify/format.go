// File: internal/notify/format.go
package notify

import (
	"fmt"
	"strings"
	"time"

	"flipradar_backend/internal/listing"

	"github.com/dustin/go-humanize"
)

// BuildCaption renders one listing as a Telegram Markdown card.
func BuildCaption(l *listing.Listing, now time.Time) string {
	// Truncate by runes, not bytes, so multi-byte titles stay valid UTF-8.
	title := l.Title
	if r := []rune(title); len(r) > 100 {
		title = string(r[:100])
	}

	parts := []string{
		fmt.Sprintf("*%s*", title),
		fmt.Sprintf("[Open listing](%s) • _%s_", l.URL, l.Source),
	}
	if l.PriceEUR > 0 {
		parts = append(parts, fmt.Sprintf("Ask: *%s*", formatEUR(l.PriceEUR)))
	}
	parts = append(parts, fmt.Sprintf("Est. margin: *%s*", formatEUR(l.MarginEstimateEUR)))
	if l.PricePerUnit != nil {
		parts = append(parts, fmt.Sprintf("€/unit: %.2f", *l.PricePerUnit))
	}
	if l.PricePerKG != nil {
		parts = append(parts, fmt.Sprintf("€/kg: %.2f", *l.PricePerKG))
	}
	if l.DistanceKM != nil {
		parts = append(parts, fmt.Sprintf("Distance: ~%d km", int(*l.DistanceKM)))
	}
	if !l.CreatedAt.IsZero() {
		parts = append(parts, humanize.RelTime(l.CreatedAt, now, "ago", "from now"))
	}
	return strings.Join(parts, "\n")
}

// formatEUR renders a euro amount with thin-space thousand separators, the
// way the bot has always shown prices.
func formatEUR(v float64) string {
	s := humanize.CommafWithDigits(v, 0)
	return "€" + strings.ReplaceAll(s, ",", " ")
}
