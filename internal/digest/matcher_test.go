package digest

import (
	"testing"
	"time"

	"flipradar_backend/internal/listing"
	"flipradar_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func poolListing(title string, distanceKM *float64, flipScore float64, age time.Duration) listing.Listing {
	l := listing.Listing{
		Source:     "troostwijk",
		ExternalID: uuid.NewString(),
		URL:        "https://example.com/lot",
		Title:      title,
		DistanceKM: distanceKM,
		FlipScore:  flipScore,
	}
	l.ID = uuid.New()
	l.CreatedAt = time.Now().UTC().Add(-age)
	return l
}

func watchUser(radiusKM int, keywords ...string) *user.User {
	u := &user.User{TelegramID: 1, RadiusKM: radiusKM}
	for _, kw := range keywords {
		u.Watches = append(u.Watches, user.Watch{UserID: 1, Keyword: kw})
	}
	return u
}

func TestSelectCandidates_RadiusFilter(t *testing.T) {
	far := poolListing("Nike Air sneaker lot", floatPtr(1065), 0.5, time.Hour)
	near := poolListing("Nike Air sneaker lot", floatPtr(120), 0.5, time.Hour)
	unknown := poolListing("Nike Air sneaker lot", nil, 0.5, time.Hour)

	got := SelectCandidates([]listing.Listing{far, near, unknown}, watchUser(300, "nike"))
	require.Len(t, got, 2)
	for _, l := range got {
		assert.NotEqual(t, far.ID, l.ID, "a listing beyond the user radius must never be included")
	}
}

func TestSelectCandidates_CategoryGate(t *testing.T) {
	tools := poolListing("Makita power tools lot", nil, 0.9, time.Hour)
	shoes := poolListing("Trainer pallet, branded", nil, 0.1, time.Hour)

	// The watch matches both titles, but only the footwear title survives
	// the built-in gate.
	got := SelectCandidates([]listing.Listing{tools, shoes}, watchUser(500, "lot"))
	require.Len(t, got, 1)
	assert.Equal(t, shoes.ID, got[0].ID)
}

func TestMatchesAnyWatch_ORSemantics(t *testing.T) {
	watches := []user.Watch{{Keyword: "nike adidas"}}
	assert.True(t, MatchesAnyWatch("Adidas Superstar lot", watches))
	assert.True(t, MatchesAnyWatch("NIKE dunk pallet", watches))
	assert.False(t, MatchesAnyWatch("Puma sportswear lot", watches))

	// OR across watches too.
	multi := []user.Watch{{Keyword: "reebok"}, {Keyword: "puma"}}
	assert.True(t, MatchesAnyWatch("Puma sportswear lot", multi))
}

func TestSelectCandidates_DeduplicatesAcrossWatches(t *testing.T) {
	l := poolListing("Nike Adidas sneaker mixed lot", nil, 0.5, time.Hour)
	got := SelectCandidates([]listing.Listing{l}, watchUser(500, "nike", "adidas"))
	assert.Len(t, got, 1)
}

func TestRankTop_RecencyBoostedOrderAndLimit(t *testing.T) {
	now := time.Now().UTC()
	// 0.5 * 1.15 = 0.575 beats 0.55 * 1.0 = 0.55
	freshMid := poolListing("sneaker a", nil, 0.5, time.Hour)
	staleHigh := poolListing("sneaker b", nil, 0.55, 100*time.Hour)
	low := poolListing("sneaker c", nil, 0.1, time.Hour)

	ranked := RankTop([]listing.Listing{low, staleHigh, freshMid}, now, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, freshMid.ID, ranked[0].ID)
	assert.Equal(t, staleHigh.ID, ranked[1].ID)
}

func TestRankTop_DeterministicTieBreak(t *testing.T) {
	now := time.Now().UTC()
	a := poolListing("sneaker a", nil, 0.5, time.Hour)
	b := poolListing("sneaker b", nil, 0.5, time.Hour)
	b.CreatedAt = a.CreatedAt // exact tie on score and age

	first := RankTop([]listing.Listing{a, b}, now, 10)
	second := RankTop([]listing.Listing{b, a}, now, 10)
	require.Len(t, first, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
}

func TestDropSeen(t *testing.T) {
	a := poolListing("sneaker a", nil, 0.5, time.Hour)
	b := poolListing("sneaker b", nil, 0.5, time.Hour)

	seen := map[uuid.UUID]struct{}{a.ID: {}}
	got := DropSeen([]listing.Listing{a, b}, seen)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
}

func TestPassesCategoryGate(t *testing.T) {
	assert.True(t, PassesCategoryGate("Bulk SHOES pallet"))
	assert.True(t, PassesCategoryGate("adidas originals lot"))
	assert.False(t, PassesCategoryGate("Industrial compressors"))
}
