package dailylog

import (
	"time"

	"gorm.io/datatypes"
)

const DayLayout = "2006-01-02"

// DailyLog is one temple's collection for one calendar day. (TempleCode, Day)
// is unique; resubmitting a day overwrites the row.
type DailyLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TempleCode  string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_temple_day" json:"temple_code" validate:"required"`
	Day         datatypes.Date `gorm:"not null;uniqueIndex:idx_temple_day" json:"day"`
	DryKg       float64        `gorm:"not null;default:0" json:"dry_kg" validate:"gte=0"`
	WetKg       float64        `gorm:"not null;default:0" json:"wet_kg" validate:"gte=0"`
	PlasticKg   float64        `gorm:"not null;default:0" json:"plastic_kg" validate:"gte=0"`
	Points      int64          `gorm:"not null;default:0" json:"points" validate:"gte=0"`
	CollectedBy string         `gorm:"type:varchar(255)" json:"collected_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (DailyLog) TableName() string { return "temple_daily_logs" }

func (l DailyLog) DayString() string { return time.Time(l.Day).Format(DayLayout) }

type SubmitRequest struct {
	TempleCode  string  `json:"temple_code" binding:"required"`
	Day         string  `json:"day" binding:"required" example:"2025-01-01"`
	DryKg       float64 `json:"dry_kg"`
	WetKg       float64 `json:"wet_kg"`
	PlasticKg   float64 `json:"plastic_kg"`
	CollectedBy string  `json:"collected_by"`
}

type SubmitResult struct {
	Log          DailyLog `json:"log"`
	Delta        int64    `json:"delta"`
	TemplePoints int64    `json:"temple_points"`
	Overwrote    bool     `json:"overwrote"`
}

type ListFilter struct {
	TempleCode string
	TempleIn   []string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// Totals aggregates weights and points across a set of logs.
type Totals struct {
	Logs      int64   `json:"logs"`
	DryKg     float64 `json:"dry_kg"`
	WetKg     float64 `json:"wet_kg"`
	PlasticKg float64 `json:"plastic_kg"`
	Points    int64   `json:"points"`
}
