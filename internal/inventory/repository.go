package inventory

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/store"
)

type Repository interface {
	Create(ctx context.Context, it *Item) error
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id uint) (*Item, error)
	Update(ctx context.Context, id uint, patch map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	records *store.Repository[Item]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{records: store.NewRepository[Item](db)}
}

func (r *repository) Create(ctx context.Context, it *Item) error {
	return r.records.Insert(ctx, it)
}

func (r *repository) List(ctx context.Context) ([]Item, error) {
	return r.records.List(ctx, store.Query{}.OrderBy("item", false))
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Item, error) {
	it, err := r.records.Get(ctx, store.ByID(id))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("inventory item %d not found", id)
	}
	return it, err
}

func (r *repository) Update(ctx context.Context, id uint, patch map[string]interface{}) error {
	err := r.records.Update(ctx, store.ByID(id), patch)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("inventory item %d not found", id)
	}
	return err
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.records.Delete(ctx, store.ByID(id))
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	return r.records.Count(ctx, store.Query{})
}
