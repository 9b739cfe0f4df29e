package reports

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

type Service interface {
	DailyLogs(ctx context.Context, req Request) ([]DailyLogRow, error)
	Leaderboard(ctx context.Context, req Request) ([]LeaderboardRow, error)
	// Export renders one report kind (ReportDailyLogs or ReportLeaderboard)
	// in req.Format.
	Export(ctx context.Context, kind string, req Request) (*Export, error)
}

type service struct {
	repo Repository
	now  func() time.Time
	log  *zap.SugaredLogger
}

func NewService(repo Repository, log *zap.SugaredLogger) Service {
	return &service{repo: repo, now: time.Now, log: log.With("service", "ReportService")}
}

func (s *service) DailyLogs(ctx context.Context, req Request) ([]DailyLogRow, error) {
	from, to, err := DayRange(s.now(), req.DateRange, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	return s.repo.DailyLogs(ctx, req.TempleCode, from, to)
}

func (s *service) Leaderboard(ctx context.Context, req Request) ([]LeaderboardRow, error) {
	from, to, err := DayRange(s.now(), req.DateRange, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	return s.repo.Leaderboard(ctx, from, to)
}

func (s *service) Export(ctx context.Context, kind string, req Request) (*Export, error) {
	if _, err := NormalizeFormat(req.Format); err != nil {
		return nil, err
	}
	stamp := s.now().UTC().Format("20060102_150405")

	var (
		table Table
		base  string
	)
	switch kind {
	case ReportDailyLogs:
		rows, err := s.DailyLogs(ctx, req)
		if err != nil {
			return nil, err
		}
		table, base = dailyLogsTable(rows), "daily_logs_report_"+stamp
	case ReportLeaderboard:
		rows, err := s.Leaderboard(ctx, req)
		if err != nil {
			return nil, err
		}
		table, base = leaderboardTable(rows), "temple_leaderboard_"+stamp
	default:
		return nil, apperr.Validation("unsupported report type %q", kind)
	}

	out, err := Render(table, req.Format, base)
	if err != nil {
		return nil, err
	}
	s.log.Infow("report exported", "kind", kind, "format", req.Format, "rows", len(table.Rows), "bytes", len(out.Data))
	return out, nil
}

func dailyLogsTable(rows []DailyLogRow) Table {
	t := Table{
		Title:   "Daily Collection Logs",
		Sheet:   "Daily Logs",
		Headers: []string{"Day", "Temple Code", "Temple", "Dry (kg)", "Wet (kg)", "Plastic (kg)", "Points", "Collected By"},
		Widths:  []float64{25, 25, 60, 25, 25, 25, 20, 50},
		Rows:    make([][]interface{}, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Day, r.TempleCode, r.TempleName, r.DryKg, r.WetKg, r.PlasticKg, r.Points, r.CollectedBy})
	}
	return t
}

func leaderboardTable(rows []LeaderboardRow) Table {
	t := Table{
		Title:   "Temple Donation Points Leaderboard",
		Sheet:   "Leaderboard",
		Headers: []string{"Rank", "Temple Code", "Temple", "Points", "Logs", "Dry (kg)", "Wet (kg)", "Plastic (kg)"},
		Widths:  []float64{15, 25, 70, 25, 20, 30, 30, 30},
		Rows:    make([][]interface{}, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Rank, r.TempleCode, r.TempleName, r.DonationPoints, r.Logs, r.DryKg, r.WetKg, r.PlasticKg})
	}
	return t
}
