package dailylog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/store"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, templeCode string, day datatypes.Date) (*DailyLog, error)
	Upsert(ctx context.Context, l *DailyLog) error
	List(ctx context.Context, f ListFilter) ([]DailyLog, error)
	Totals(ctx context.Context, templeCodes ...string) (Totals, error)
}

type repository struct {
	records *store.Repository[DailyLog]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{records: store.NewRepository[DailyLog](db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{records: r.records.WithTx(tx)}
}

// Find returns the log for (templeCode, day) or NotFound.
func (r *repository) Find(ctx context.Context, templeCode string, day datatypes.Date) (*DailyLog, error) {
	rows, err := r.records.List(ctx, store.Query{}.
		Where(store.Eq("temple_code", templeCode), store.Eq("day", day)).
		Take(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("no log for %s on %s", templeCode, fmtDay(day))
	}
	return &rows[0], nil
}

func (r *repository) Upsert(ctx context.Context, l *DailyLog) error {
	return r.records.Upsert(ctx, l, "temple_code", "day")
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]DailyLog, error) {
	q := store.Query{}.OrderBy("day", true).OrderBy("temple_code", false)
	if f.TempleCode != "" {
		q = q.Where(store.Eq("temple_code", f.TempleCode))
	}
	if len(f.TempleIn) > 0 {
		q = q.Where(store.In("temple_code", f.TempleIn))
	}
	if f.From != nil {
		q = q.Where(store.Gte("day", datatypes.Date(*f.From)))
	}
	if f.To != nil {
		q = q.Where(store.Lte("day", datatypes.Date(*f.To)))
	}
	if f.Limit > 0 {
		q = q.Take(f.Limit)
	}
	return r.records.List(ctx, q)
}

// Totals sums every log, or only those of templeCodes when given.
func (r *repository) Totals(ctx context.Context, templeCodes ...string) (Totals, error) {
	var t Totals
	tx := r.records.DB().WithContext(ctx).Model(&DailyLog{}).
		Select("COUNT(*) AS logs, COALESCE(SUM(dry_kg),0) AS dry_kg, COALESCE(SUM(wet_kg),0) AS wet_kg, " +
			"COALESCE(SUM(plastic_kg),0) AS plastic_kg, COALESCE(SUM(points),0) AS points")
	if len(templeCodes) > 0 {
		tx = tx.Where("temple_code IN ?", templeCodes)
	}
	if err := tx.Scan(&t).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return Totals{}, fmt.Errorf("sum daily logs: %w", err)
	}
	return t, nil
}

func fmtDay(d datatypes.Date) string {
	return DailyLog{Day: d}.DayString()
}
