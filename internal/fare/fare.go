// Package fare computes the human-facing fare preview shown next to the
// pricing form. The result is never persisted or billed.
package fare

import (
	"math"

	"github.com/BahodirovaS/take4admin/internal/models"
)

// ExampleTrip is the fixed "typical ride" the preview is computed for.
type ExampleTrip struct {
	Miles   float64
	Minutes float64
}

// Preview estimates the fare for the example trip under the given pricing
// parameters, floored at the configured minimum.
func Preview(cfg models.PricingConfig, trip ExampleTrip) float64 {
	est := cfg.BasePrice + cfg.PerMileRate*trip.Miles + cfg.PerMinuteRate*trip.Minutes
	return math.Max(est, cfg.MinimumPrice)
}
