package inventory

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

type Service interface {
	Create(ctx context.Context, in CreateItemRequest) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	Update(ctx context.Context, id uint, in UpdateItemRequest) (*Item, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo    Repository
	now     func() time.Time
	log     *zap.SugaredLogger
}

func NewService(repo Repository, log *zap.SugaredLogger) Service {
	return &service{
		repo:    repo,
		now:     time.Now,
		log:     log.With("service", "InventoryService"),
	}
}

func (s *service) Create(ctx context.Context, in CreateItemRequest) (*Item, error) {
	if in.Quantity == nil {
		return nil, apperr.Validation("quantity is required")
	}
	it := &Item{
		Name:        strings.TrimSpace(in.Item),
		Quantity:    *in.Quantity,
		LastUpdated: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}
	s.log.Infow("inventory item added", "item", it.Name, "quantity", it.Quantity)
	return it, nil
}

func (s *service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uint, in UpdateItemRequest) (*Item, error) {
	patch := map[string]interface{}{}
	if in.Item != nil {
		name := strings.TrimSpace(*in.Item)
		if name == "" {
			return nil, apperr.Validation("item is required")
		}
		patch["item"] = name
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, apperr.Validation("quantity must be at least 0")
		}
		patch["quantity"] = *in.Quantity
	}
	if len(patch) == 0 {
		return nil, apperr.Validation("nothing to update")
	}
	patch["last_updated"] = s.now().UTC()

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
