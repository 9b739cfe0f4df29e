package reports

const (
	ReportDailyLogs   = "daily-logs"
	ReportLeaderboard = "leaderboard"
)

const (
	DateRangeDaily   = "daily"
	DateRangeWeekly  = "weekly"
	DateRangeMonthly = "monthly"
	DateRangeYearly  = "yearly"
	DateRangeCustom  = "custom"
)

const (
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
	FormatCSV   = "csv"
)

// Request is bound from the query string. An empty date_range covers every
// day.
type Request struct {
	Format     string `form:"format"`
	DateRange  string `form:"date_range"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	TempleCode string `form:"temple_code"`
}

type DailyLogRow struct {
	Day         string  `json:"day"`
	TempleCode  string  `json:"temple_code"`
	TempleName  string  `json:"temple_name"`
	DryKg       float64 `json:"dry_kg"`
	WetKg       float64 `json:"wet_kg"`
	PlasticKg   float64 `json:"plastic_kg"`
	Points      int64   `json:"points"`
	CollectedBy string  `json:"collected_by"`
}

type LeaderboardRow struct {
	Rank           int     `json:"rank"`
	TempleCode     string  `json:"temple_code" gorm:"column:unique_code"`
	TempleName     string  `json:"temple_name" gorm:"column:name"`
	DonationPoints int64   `json:"donation_points"`
	Logs           int64   `json:"logs"`
	DryKg          float64 `json:"dry_kg"`
	WetKg          float64 `json:"wet_kg"`
	PlasticKg      float64 `json:"plastic_kg"`
}

// Export is a rendered report file.
type Export struct {
	Data        []byte
	FileName    string
	ContentType string
}
