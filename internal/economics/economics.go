// File: internal/economics/economics.go
package economics

import "flipradar_backend/internal/config"

// EconomicsConfig carries the cost-model constants. It is passed explicitly
// so tests and per-user overrides never depend on process-wide state.
type EconomicsConfig struct {
	FeesPct      float64
	ShipPerKGEUR float64
	FixedShipEUR float64
}

// FromConfig builds an EconomicsConfig from application configuration.
func FromConfig(cfg *config.Config) EconomicsConfig {
	return EconomicsConfig{
		FeesPct:      cfg.DefaultFeesPct,
		ShipPerKGEUR: cfg.DefaultShipPerKGEUR,
		FixedShipEUR: cfg.DefaultFixedShipEUR,
	}
}

// fallbackWeightKG is assumed when a listing has no usable weight.
const fallbackWeightKG = 10.0

// EstimateShippingEUR returns the shipping estimate for a listing weight.
// Missing or non-positive weights fall back to a default pallet weight.
func (e EconomicsConfig) EstimateShippingEUR(weightKG *float64) float64 {
	w := fallbackWeightKG
	if weightKG != nil && *weightKG > 0 {
		w = *weightKG
	}
	return e.FixedShipEUR + e.ShipPerKGEUR*w
}

// ApplyFees returns the marketplace fee for an asking price.
func (e EconomicsConfig) ApplyFees(priceEUR float64) float64 {
	return priceEUR * e.FeesPct
}
