package fare

import (
	"math"
	"testing"

	"github.com/BahodirovaS/take4admin/internal/models"
)

var exampleTrip = ExampleTrip{Miles: 3.2, Minutes: 12}

func TestPreviewLinearFormula(t *testing.T) {
	cfg := models.PricingConfig{BasePrice: 5, PerMileRate: 2, PerMinuteRate: 0.5, MinimumPrice: 12}
	got := Preview(cfg, exampleTrip)
	want := 5 + 2*3.2 + 0.5*12 // 17.4, above the 12 floor
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Preview = %v, want %v", got, want)
	}
}

func TestPreviewMinimumFloor(t *testing.T) {
	cfg := models.PricingConfig{MinimumPrice: 20}
	if got := Preview(cfg, exampleTrip); got != 20 {
		t.Fatalf("Preview = %v, want floor 20", got)
	}
}

func TestPreviewZeroConfig(t *testing.T) {
	if got := Preview(models.PricingConfig{}, exampleTrip); got != 0 {
		t.Fatalf("Preview = %v, want 0", got)
	}
}
