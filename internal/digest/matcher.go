// File: internal/digest/matcher.go
package digest

import (
	"sort"
	"strings"
	"time"

	"flipradar_backend/internal/listing"
	"flipradar_backend/internal/user"

	"github.com/google/uuid"
)

// footwearGate is the built-in domain allow-list every digest candidate must
// pass in addition to the user's own watch keywords.
//
// TODO: this gate also suppresses watches for unrelated terms (a "tools"
// watch can never surface anything); move it into per-source scrape
// configuration once product confirms the radar stays footwear-only.
var footwearGate = []string{"sneaker", "shoe", "trainer", "adidas", "nike"}

// PassesCategoryGate reports whether a title carries at least one
// footwear-domain token.
func PassesCategoryGate(title string) bool {
	lower := strings.ToLower(title)
	for _, token := range footwearGate {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// MatchesAnyWatch reports whether a title contains at least one
// whitespace-delimited token from any of the watches. Matching is
// case-insensitive substring containment, OR across tokens and OR across
// watches.
func MatchesAnyWatch(title string, watches []user.Watch) bool {
	lower := strings.ToLower(title)
	for _, w := range watches {
		for _, token := range strings.Fields(strings.ToLower(w.Keyword)) {
			if strings.Contains(lower, token) {
				return true
			}
		}
	}
	return false
}

// withinRadius keeps listings whose distance is unknown or inside the user's
// search radius.
func withinRadius(l *listing.Listing, radiusKM int) bool {
	return l.DistanceKM == nil || *l.DistanceKM <= float64(radiusKM)
}

// SelectCandidates filters a recent-listings pool down to the candidates for
// one user: radius, category gate, keyword match, deduplicated by listing
// identity.
func SelectCandidates(pool []listing.Listing, u *user.User) []listing.Listing {
	var out []listing.Listing
	picked := make(map[uuid.UUID]struct{})
	for i := range pool {
		l := &pool[i]
		if _, dup := picked[l.ID]; dup {
			continue
		}
		if !withinRadius(l, u.RadiusKM) {
			continue
		}
		if !PassesCategoryGate(l.Title) {
			continue
		}
		if !MatchesAnyWatch(l.Title, u.Watches) {
			continue
		}
		picked[l.ID] = struct{}{}
		out = append(out, *l)
	}
	return out
}

// RankTop orders candidates by recency-boosted flip score, best first, and
// truncates to limit. Ties break on newer created_at, then listing id, so
// the ordering is fully deterministic.
func RankTop(candidates []listing.Listing, now time.Time, limit int) []listing.Listing {
	ranked := make([]listing.Listing, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		si := listing.FinalRankScore(&ranked[i], now)
		sj := listing.FinalRankScore(&ranked[j], now)
		if si != sj {
			return si > sj
		}
		if !ranked[i].CreatedAt.Equal(ranked[j].CreatedAt) {
			return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
		}
		return ranked[i].ID.String() < ranked[j].ID.String()
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// DropSeen removes candidates already delivered to the user.
func DropSeen(candidates []listing.Listing, seen map[uuid.UUID]struct{}) []listing.Listing {
	var out []listing.Listing
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
