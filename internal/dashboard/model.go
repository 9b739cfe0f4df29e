package dashboard

import (
	"github.com/sharath018/temple-waste-backend/internal/dailylog"
	"github.com/sharath018/temple-waste-backend/internal/ngo"
	"github.com/sharath018/temple-waste-backend/internal/temple"
)

const (
	recentLogs = 10
	topTemples = 5
)

// WasteMix is the share of each waste stream in percent, rounded to two
// decimals. All zero when nothing was collected.
type WasteMix struct {
	TotalKg    float64 `json:"total_kg"`
	DryPct     float64 `json:"dry_pct"`
	WetPct     float64 `json:"wet_pct"`
	PlasticPct float64 `json:"plastic_pct"`
}

type Counts struct {
	Temples   int64 `json:"temples"`
	NGOs      int64 `json:"ngos"`
	Inventory int64 `json:"inventory_items"`
	Logs      int64 `json:"daily_logs"`
}

type AdminDashboard struct {
	Counts      Counts              `json:"counts"`
	TotalPoints int64               `json:"total_points"`
	Totals      dailylog.Totals     `json:"totals"`
	WasteMix    WasteMix            `json:"waste_mix"`
	TopTemples  []temple.Temple     `json:"top_temples"`
	RecentLogs  []dailylog.DailyLog `json:"recent_logs"`
}

type TempleDashboard struct {
	Temple     temple.Temple       `json:"temple"`
	Totals     dailylog.Totals     `json:"totals"`
	WasteMix   WasteMix            `json:"waste_mix"`
	RecentLogs []dailylog.DailyLog `json:"recent_logs"`
}

type NGODashboard struct {
	NGO            ngo.NGO             `json:"ngo"`
	AssignedTemple *temple.Temple      `json:"assigned_temple,omitempty"`
	Totals         dailylog.Totals     `json:"totals"`
	WasteMix       WasteMix            `json:"waste_mix"`
	RecentLogs     []dailylog.DailyLog `json:"recent_logs"`
}
