package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/auth"
	"github.com/sharath018/temple-waste-backend/internal/dailylog"
	"github.com/sharath018/temple-waste-backend/internal/inventory"
	"github.com/sharath018/temple-waste-backend/internal/ngo"
	"github.com/sharath018/temple-waste-backend/internal/temple"
	"github.com/sharath018/temple-waste-backend/internal/testdb"
)

func TestComputeWasteMix(t *testing.T) {
	tests := []struct {
		name   string
		totals dailylog.Totals
		want   WasteMix
	}{
		{"nothing collected", dailylog.Totals{}, WasteMix{}},
		{"even split", dailylog.Totals{DryKg: 10, WetKg: 10, PlasticKg: 10}, WasteMix{TotalKg: 30, DryPct: 33.33, WetPct: 33.33, PlasticPct: 33.33}},
		{"one stream", dailylog.Totals{WetKg: 12.5}, WasteMix{TotalKg: 12.5, WetPct: 100}},
		{"uneven", dailylog.Totals{DryKg: 1, WetKg: 2, PlasticKg: 5}, WasteMix{TotalKg: 8, DryPct: 12.5, WetPct: 25, PlasticPct: 62.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeWasteMix(tt.totals))
		})
	}
}

type fixture struct {
	db  *gorm.DB
	svc Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t, &temple.Temple{}, &ngo.NGO{}, &inventory.Item{}, &dailylog.DailyLog{})
	log := zap.NewNop().Sugar()
	return &fixture{
		db: db,
		svc: NewService(
			temple.NewRepository(db),
			ngo.NewRepository(db),
			inventory.NewService(inventory.NewRepository(db), log),
			dailylog.NewRepository(db),
			log,
		),
	}
}

func day(s string) datatypes.Date {
	d, _ := time.Parse(dailylog.DayLayout, s)
	return datatypes.Date(d)
}

func strPtr(s string) *string { return &s }

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	require.NoError(t, f.db.Create(&[]temple.Temple{
		{UniqueCode: "01", Name: "Sri Rama", DonationPoints: 7},
		{UniqueCode: "02", Name: "Shiva", DonationPoints: 12},
		{UniqueCode: "03", Name: "Ganesha"},
	}).Error)
	require.NoError(t, f.db.Create(&[]dailylog.DailyLog{
		{TempleCode: "01", Day: day("2025-01-01"), DryKg: 10, WetKg: 10, Points: 4},
		{TempleCode: "01", Day: day("2025-01-02"), PlasticKg: 15, Points: 3},
		{TempleCode: "02", Day: day("2025-01-01"), WetKg: 60, Points: 12},
	}).Error)
	require.NoError(t, f.db.Create(&ngo.NGO{Name: "Green Hands", AssignedTempleCode: strPtr("01")}).Error)
	require.NoError(t, f.db.Create(&ngo.NGO{Name: "Unassigned"}).Error)
	require.NoError(t, f.db.Create(&inventory.Item{Name: "Gloves", Quantity: 20, LastUpdated: time.Now()}).Error)
}

func TestAdminDashboard(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	d, err := f.svc.Admin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Counts{Temples: 3, NGOs: 2, Inventory: 1, Logs: 3}, d.Counts)
	assert.Equal(t, int64(19), d.TotalPoints)
	assert.Equal(t, WasteMix{TotalKg: 95, DryPct: 10.53, WetPct: 73.68, PlasticPct: 15.79}, d.WasteMix)
	require.Len(t, d.TopTemples, 3)
	assert.Equal(t, "02", d.TopTemples[0].UniqueCode)
	assert.Equal(t, "01", d.TopTemples[1].UniqueCode)
	assert.Len(t, d.RecentLogs, 3)
}

func TestTempleDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	d, err := f.svc.Temple(ctx, &auth.Principal{Role: auth.RoleTemple, TempleCode: strPtr("01")})
	require.NoError(t, err)
	assert.Equal(t, "Sri Rama", d.Temple.Name)
	assert.Equal(t, int64(2), d.Totals.Logs)
	assert.Equal(t, "2025-01-02", d.RecentLogs[0].DayString())
	assert.Equal(t, WasteMix{TotalKg: 35, DryPct: 28.57, WetPct: 28.57, PlasticPct: 42.86}, d.WasteMix)

	_, err = f.svc.Temple(ctx, &auth.Principal{Role: auth.RoleTemple})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestNGODashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	var assigned, idle ngo.NGO
	require.NoError(t, f.db.Where("name = ?", "Green Hands").First(&assigned).Error)
	require.NoError(t, f.db.Where("name = ?", "Unassigned").First(&idle).Error)

	d, err := f.svc.NGO(ctx, &auth.Principal{Role: auth.RoleNGO, NGOID: &assigned.ID})
	require.NoError(t, err)
	require.NotNil(t, d.AssignedTemple)
	assert.Equal(t, "01", d.AssignedTemple.UniqueCode)
	assert.Len(t, d.RecentLogs, 2)

	d, err = f.svc.NGO(ctx, &auth.Principal{Role: auth.RoleNGO, NGOID: &idle.ID})
	require.NoError(t, err)
	assert.Nil(t, d.AssignedTemple)
	assert.Empty(t, d.RecentLogs)
	assert.Equal(t, WasteMix{}, d.WasteMix)

	_, err = f.svc.NGO(ctx, &auth.Principal{Role: auth.RoleNGO})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
