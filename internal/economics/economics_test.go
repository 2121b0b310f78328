package economics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testEcon = EconomicsConfig{
	FeesPct:      0.12,
	ShipPerKGEUR: 1.8,
	FixedShipEUR: 25.0,
}

func TestEstimateShippingEUR(t *testing.T) {
	w := 20.0
	assert.InDelta(t, 61.0, testEcon.EstimateShippingEUR(&w), 0.001)
}

func TestEstimateShippingEUR_FallbackWeight(t *testing.T) {
	// 25 + 1.8 * 10 with the default weight
	assert.InDelta(t, 43.0, testEcon.EstimateShippingEUR(nil), 0.001)

	zero := 0.0
	assert.InDelta(t, 43.0, testEcon.EstimateShippingEUR(&zero), 0.001)

	negative := -4.0
	assert.InDelta(t, 43.0, testEcon.EstimateShippingEUR(&negative), 0.001)
}

func TestApplyFees(t *testing.T) {
	assert.InDelta(t, 60.0, testEcon.ApplyFees(500.0), 0.001)
	assert.InDelta(t, 0.0, testEcon.ApplyFees(0.0), 0.001)
}
