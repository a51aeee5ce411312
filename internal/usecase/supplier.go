package usecase

import "math"

// Price score curve parameters. Within the tolerance band the score runs
// linearly from priceScoreBase at the upper edge to 1.0 at the lower edge;
// past the upper edge it decays exponentially from priceScoreBase, so the
// curve is continuous at the boundary and never reaches zero.
const (
	priceScoreBase = 0.5
	priceDecayRate = 3.0
)

// SupplierEvaluator scores a supplier offer against the tender item's target
// price. The tolerance is soft: an offer outside the band is still included,
// just with a reduced score.
type SupplierEvaluator struct{}

// NewSupplierEvaluator creates a supplier evaluator.
func NewSupplierEvaluator() *SupplierEvaluator {
	return &SupplierEvaluator{}
}

// Score returns a price score in [0,1], strictly decreasing as the offer
// price grows. A non-positive price on either side means the offer cannot
// be evaluated and scores 0.
func (e *SupplierEvaluator) Score(targetPrice, offerPrice, tolerancePercent float64) float64 {
	if targetPrice <= 0 || offerPrice <= 0 {
		return 0
	}

	tolerance := tolerancePercent / 100
	if tolerance < 0 {
		tolerance = 0
	}
	lower := targetPrice * (1 - tolerance)
	upper := targetPrice * (1 + tolerance)

	switch {
	case offerPrice <= lower:
		return 1.0
	case offerPrice <= upper:
		if upper == lower {
			return 1.0
		}
		return priceScoreBase + (1-priceScoreBase)*(upper-offerPrice)/(upper-lower)
	default:
		return priceScoreBase * math.Exp(-priceDecayRate*(offerPrice-upper)/targetPrice)
	}
}
