package temple

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/store"
)

type Repository interface {
	Create(ctx context.Context, t *Temple) error
	List(ctx context.Context, q store.Query) ([]Temple, error)
	GetByCode(ctx context.Context, code string) (*Temple, error)
	Exists(ctx context.Context, code string) (bool, error)
	UpdateByCode(ctx context.Context, code string, patch map[string]interface{}) error
	DeleteByCode(ctx context.Context, code string) error
	Count(ctx context.Context) (int64, error)
	TotalPoints(ctx context.Context) (int64, error)
	// LogCount counts daily logs filed under the code.
	LogCount(ctx context.Context, code string) (int64, error)
}

const logsTable = "temple_daily_logs"

type repository struct {
	records *store.Repository[Temple]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{records: store.NewRepository[Temple](db)}
}

func (r *repository) Create(ctx context.Context, t *Temple) error {
	return r.records.Insert(ctx, t)
}

func (r *repository) List(ctx context.Context, q store.Query) ([]Temple, error) {
	return r.records.List(ctx, q)
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Temple, error) {
	t, err := r.records.Get(ctx, store.By("unique_code", code))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("temple %q not found", code)
		}
		return nil, err
	}
	return t, nil
}

func (r *repository) Exists(ctx context.Context, code string) (bool, error) {
	n, err := r.records.Count(ctx, store.Query{}.Where(store.Eq("unique_code", code)))
	return n > 0, err
}

func (r *repository) UpdateByCode(ctx context.Context, code string, patch map[string]interface{}) error {
	err := r.records.Update(ctx, store.By("unique_code", code), patch)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("temple %q not found", code)
	}
	return err
}

func (r *repository) DeleteByCode(ctx context.Context, code string) error {
	return r.records.Delete(ctx, store.By("unique_code", code))
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	return r.records.Count(ctx, store.Query{})
}

func (r *repository) TotalPoints(ctx context.Context) (int64, error) {
	var total int64
	err := r.records.DB().WithContext(ctx).Model(&Temple{}).
		Select("COALESCE(SUM(donation_points), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) LogCount(ctx context.Context, code string) (int64, error) {
	var n int64
	err := r.records.DB().WithContext(ctx).Table(logsTable).
		Where("temple_code = ?", code).
		Count(&n).Error
	return n, err
}
