package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/sharath018/temple-waste-backend/internal/dailylog"
)

var hundred = decimal.NewFromInt(100)

func ComputeWasteMix(t dailylog.Totals) WasteMix {
	dry := decimal.NewFromFloat(t.DryKg)
	wet := decimal.NewFromFloat(t.WetKg)
	plastic := decimal.NewFromFloat(t.PlasticKg)
	total := dry.Add(wet).Add(plastic)

	mix := WasteMix{TotalKg: total.Round(2).InexactFloat64()}
	if !total.IsPositive() {
		return mix
	}
	pct := func(d decimal.Decimal) float64 {
		return d.Mul(hundred).Div(total).Round(2).InexactFloat64()
	}
	mix.DryPct = pct(dry)
	mix.WetPct = pct(wet)
	mix.PlasticPct = pct(plastic)
	return mix
}
