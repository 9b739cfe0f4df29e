package reports

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/dailylog"
	"github.com/sharath018/temple-waste-backend/internal/temple"
	"github.com/sharath018/temple-waste-backend/internal/testdb"
)

func date(s string) time.Time {
	d, _ := time.Parse(dailylog.DayLayout, s)
	return d
}

func TestDayRange(t *testing.T) {
	now := time.Date(2025, 3, 14, 22, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		dateRange string
		start     string
		end       string
		wantFrom  string
		wantTo    string
		wantErr   bool
	}{
		{name: "daily", dateRange: DateRangeDaily, wantFrom: "2025-03-14", wantTo: "2025-03-14"},
		{name: "weekly", dateRange: DateRangeWeekly, wantFrom: "2025-03-08", wantTo: "2025-03-14"},
		{name: "monthly", dateRange: DateRangeMonthly, wantFrom: "2025-03-01", wantTo: "2025-03-31"},
		{name: "yearly", dateRange: DateRangeYearly, wantFrom: "2025-01-01", wantTo: "2025-12-31"},
		{name: "custom", dateRange: DateRangeCustom, start: "2025-02-01", end: "2025-02-10", wantFrom: "2025-02-01", wantTo: "2025-02-10"},
		{name: "custom missing end", dateRange: DateRangeCustom, start: "2025-02-01", wantErr: true},
		{name: "custom reversed", dateRange: DateRangeCustom, start: "2025-02-10", end: "2025-02-01", wantErr: true},
		{name: "unknown preset", dateRange: "hourly", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := DayRange(now, tt.dateRange, tt.start, tt.end)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperr.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from.Format(dailylog.DayLayout))
			assert.Equal(t, tt.wantTo, to.Format(dailylog.DayLayout))
		})
	}

	from, to, err := DayRange(now, "", "", "")
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func sampleTable() Table {
	return Table{
		Title:   "Sample",
		Sheet:   "Rows",
		Headers: []string{"Code", "Kg", "Points"},
		Widths:  []float64{30, 30, 30},
		Rows: [][]interface{}{
			{"01", 12.5, int64(4)},
			{"02, east", 0.333, int64(0)},
		},
	}
}

func TestRenderExcel(t *testing.T) {
	out, err := Render(sampleTable(), "excel", "sample")
	require.NoError(t, err)
	assert.Equal(t, "sample.xlsx", out.FileName)
	assert.Equal(t, contentTypeExcel, out.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(out.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Rows")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Code", "Kg", "Points"}, rows[0])
	assert.Equal(t, "01", rows[1][0])
}

func TestRenderPDF(t *testing.T) {
	out, err := Render(sampleTable(), FormatPDF, "sample")
	require.NoError(t, err)
	assert.Equal(t, "sample.pdf", out.FileName)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("%PDF")))
}

func TestRenderCSV(t *testing.T) {
	out, err := Render(sampleTable(), FormatCSV, "sample")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Code,Kg,Points", lines[0])
	assert.Equal(t, "01,12.50,4", lines[1])
	assert.Equal(t, `"02, east",0.33,0`, lines[2])

	_, err = Render(sampleTable(), "docx", "sample")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func newService(t *testing.T) Service {
	t.Helper()
	db := testdb.Open(t, &temple.Temple{}, &dailylog.DailyLog{})
	require.NoError(t, db.Create(&[]temple.Temple{
		{UniqueCode: "01", Name: "Sri Rama", DonationPoints: 7},
		{UniqueCode: "02", Name: "Shiva", DonationPoints: 12},
		{UniqueCode: "03", Name: "Ganesha"},
	}).Error)
	require.NoError(t, db.Create(&[]dailylog.DailyLog{
		{TempleCode: "01", Day: datatypes.Date(date("2025-01-01")), DryKg: 10, WetKg: 10, Points: 4},
		{TempleCode: "01", Day: datatypes.Date(date("2025-01-05")), PlasticKg: 15, Points: 3},
		{TempleCode: "02", Day: datatypes.Date(date("2025-01-01")), WetKg: 60, Points: 12},
	}).Error)
	return NewService(NewRepository(db), zap.NewNop().Sugar())
}

func TestLeaderboard(t *testing.T) {
	svc := newService(t)

	rows, err := svc.Leaderboard(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, LeaderboardRow{Rank: 1, TempleCode: "02", TempleName: "Shiva", DonationPoints: 12, Logs: 1, WetKg: 60}, rows[0])
	assert.Equal(t, "01", rows[1].TempleCode)
	assert.Equal(t, int64(2), rows[1].Logs)
	assert.Equal(t, 3, rows[2].Rank)
	assert.Zero(t, rows[2].Logs)

	rows, err = svc.Leaderboard(context.Background(), Request{DateRange: DateRangeCustom, StartDate: "2025-01-02", EndDate: "2025-01-31"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(0), rows[0].Logs)
	assert.Equal(t, int64(1), rows[1].Logs)
	assert.Equal(t, 15.0, rows[1].PlasticKg)
}

func TestDailyLogsReport(t *testing.T) {
	svc := newService(t)

	rows, err := svc.DailyLogs(context.Background(), Request{TempleCode: "01"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-01-05", rows[0].Day)
	assert.Equal(t, "Sri Rama", rows[0].TempleName)

	out, err := svc.Export(context.Background(), ReportDailyLogs, Request{Format: FormatCSV})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.FileName, "daily_logs_report_"))
	assert.Contains(t, string(out.Data), "Sri Rama")

	_, err = svc.Export(context.Background(), "unknown", Request{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
