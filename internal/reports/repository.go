package reports

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	templesTable = "temples"
	logsTable    = "temple_daily_logs"
)

type Repository interface {
	DailyLogs(ctx context.Context, templeCode string, from, to *time.Time) ([]DailyLogRow, error)
	Leaderboard(ctx context.Context, from, to *time.Time) ([]LeaderboardRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type dailyLogScan struct {
	Day         datatypes.Date
	TempleCode  string
	TempleName  string
	DryKg       float64
	WetKg       float64
	PlasticKg   float64
	Points      int64
	CollectedBy string
}

func (r *repository) DailyLogs(ctx context.Context, templeCode string, from, to *time.Time) ([]DailyLogRow, error) {
	tx := r.db.WithContext(ctx).Table(logsTable + " AS l").
		Select("l.day, l.temple_code, COALESCE(t.name, '') AS temple_name, l.dry_kg, l.wet_kg, l.plastic_kg, l.points, l.collected_by").
		Joins("LEFT JOIN " + templesTable + " AS t ON t.unique_code = l.temple_code").
		Order("l.day DESC").Order("l.temple_code")
	if templeCode != "" {
		tx = tx.Where("l.temple_code = ?", templeCode)
	}
	if from != nil {
		tx = tx.Where("l.day >= ?", datatypes.Date(*from))
	}
	if to != nil {
		tx = tx.Where("l.day <= ?", datatypes.Date(*to))
	}

	var scanned []dailyLogScan
	if err := tx.Scan(&scanned).Error; err != nil {
		return nil, fmt.Errorf("daily log report: %w", err)
	}
	rows := make([]DailyLogRow, 0, len(scanned))
	for _, s := range scanned {
		rows = append(rows, DailyLogRow{
			Day:         time.Time(s.Day).Format("2006-01-02"),
			TempleCode:  s.TempleCode,
			TempleName:  s.TempleName,
			DryKg:       s.DryKg,
			WetKg:       s.WetKg,
			PlasticKg:   s.PlasticKg,
			Points:      s.Points,
			CollectedBy: s.CollectedBy,
		})
	}
	return rows, nil
}

// Leaderboard ranks every temple by its ledger total. The weight columns only
// count logs inside the range.
func (r *repository) Leaderboard(ctx context.Context, from, to *time.Time) ([]LeaderboardRow, error) {
	on := "l.temple_code = t.unique_code"
	var args []interface{}
	if from != nil {
		on += " AND l.day >= ?"
		args = append(args, datatypes.Date(*from))
	}
	if to != nil {
		on += " AND l.day <= ?"
		args = append(args, datatypes.Date(*to))
	}

	rows := make([]LeaderboardRow, 0)
	err := r.db.WithContext(ctx).Table(templesTable+" AS t").
		Select("t.unique_code, t.name, t.donation_points, COUNT(l.id) AS logs, "+
			"COALESCE(SUM(l.dry_kg), 0) AS dry_kg, COALESCE(SUM(l.wet_kg), 0) AS wet_kg, "+
			"COALESCE(SUM(l.plastic_kg), 0) AS plastic_kg").
		Joins("LEFT JOIN "+logsTable+" AS l ON "+on, args...).
		Group("t.unique_code, t.name, t.donation_points").
		Order("t.donation_points DESC").Order("t.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("leaderboard report: %w", err)
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}
