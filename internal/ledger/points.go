package ledger

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

// KgPerPoint is the whole scoring policy: one point per 5kg of combined waste,
// whatever the mix.
const KgPerPoint = 5

var kgPerPoint = decimal.NewFromInt(KgPerPoint)

// ComputePoints returns floor((dry+wet+plastic)/5). Negative and non-finite
// weights are rejected.
func ComputePoints(dryKg, wetKg, plasticKg float64) (int64, error) {
	total := decimal.Zero
	for _, kg := range []struct {
		name  string
		value float64
	}{{"dry_kg", dryKg}, {"wet_kg", wetKg}, {"plastic_kg", plasticKg}} {
		if math.IsNaN(kg.value) || math.IsInf(kg.value, 0) {
			return 0, apperr.Validation("%s must be a finite number", kg.name)
		}
		if kg.value < 0 {
			return 0, apperr.Validation("%s must not be negative", kg.name)
		}
		total = total.Add(decimal.NewFromFloat(kg.value))
	}
	return total.Div(kgPerPoint).Floor().IntPart(), nil
}
