package temple

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/asset"
	"github.com/sharath018/temple-waste-backend/internal/ledger"
	"github.com/sharath018/temple-waste-backend/internal/store"
)

type Service interface {
	Create(ctx context.Context, in CreateTempleRequest) (*Temple, error)
	List(ctx context.Context, f ListFilter) ([]Temple, error)
	Get(ctx context.Context, code string) (*Temple, error)
	Update(ctx context.Context, code string, in UpdateTempleRequest) (*Temple, error)
	// Delete is a Conflict while daily logs reference the code. NGOs
	// assigned to the temple keep pointing at the removed code.
	Delete(ctx context.Context, code string) error
	UploadImage(ctx context.Context, code, fileName string, data []byte) (*Temple, error)

	AdjustPoints(ctx context.Context, code string, delta int64) (*Temple, error)
	ReconcilePoints(ctx context.Context, code string) (*Temple, error)
}

type service struct {
	repo        Repository
	ledger      *ledger.Ledger
	assets      asset.Store
	imageBucket string
	log         *zap.SugaredLogger
}

func NewService(repo Repository, l *ledger.Ledger, assets asset.Store, imageBucket string, log *zap.SugaredLogger) Service {
	return &service{
		repo:        repo,
		ledger:      l,
		assets:      assets,
		imageBucket: imageBucket,
		log:         log.With("service", "TempleService"),
	}
}

func (s *service) Create(ctx context.Context, in CreateTempleRequest) (*Temple, error) {
	t := &Temple{
		UniqueCode:      strings.TrimSpace(in.UniqueCode),
		Name:            strings.TrimSpace(in.Name),
		Address:         strings.TrimSpace(in.Address),
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		IsHistoric:      in.IsHistoric,
		DonationPercent: in.DonationPercent,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, apperr.Conflict("temple code %q already exists", t.UniqueCode)
		}
		return nil, err
	}
	s.log.Infow("temple created", "temple_code", t.UniqueCode)
	return t, nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]Temple, error) {
	q := store.Query{}.OrderBy("name", false)
	if f.Historic != nil {
		q = q.Where(store.Eq("is_historic", *f.Historic))
	}
	if f.Limit > 0 {
		q = q.Take(f.Limit)
	}
	return s.repo.List(ctx, q)
}

func (s *service) Get(ctx context.Context, code string) (*Temple, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *service) Update(ctx context.Context, code string, in UpdateTempleRequest) (*Temple, error) {
	if in.UniqueCode != nil && strings.TrimSpace(*in.UniqueCode) != code {
		return nil, apperr.Validation("unique_code cannot be changed")
	}
	patch := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name is required")
		}
		patch["name"] = name
	}
	if in.Address != nil {
		patch["address"] = strings.TrimSpace(*in.Address)
	}
	if in.Latitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 {
			return nil, apperr.Validation("latitude must be between -90 and 90")
		}
		patch["latitude"] = *in.Latitude
	}
	if in.Longitude != nil {
		if *in.Longitude < -180 || *in.Longitude > 180 {
			return nil, apperr.Validation("longitude must be between -180 and 180")
		}
		patch["longitude"] = *in.Longitude
	}
	if in.IsHistoric != nil {
		patch["is_historic"] = *in.IsHistoric
	}
	if in.DonationPercent != nil {
		if *in.DonationPercent < 0 || *in.DonationPercent > 100 {
			return nil, apperr.Validation("donation_percent must be between 0 and 100")
		}
		patch["donation_percent"] = *in.DonationPercent
	}
	if len(patch) == 0 {
		return s.repo.GetByCode(ctx, code)
	}
	if err := s.repo.UpdateByCode(ctx, code, patch); err != nil {
		return nil, err
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *service) Delete(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return apperr.Validation("temple code is required")
	}
	logs, err := s.repo.LogCount(ctx, code)
	if err != nil {
		return err
	}
	if logs > 0 {
		return apperr.Conflict("temple %q has %d daily logs and cannot be deleted", code, logs)
	}
	if err := s.repo.DeleteByCode(ctx, code); err != nil {
		return err
	}
	s.log.Infow("temple deleted", "temple_code", code)
	return nil
}

func (s *service) UploadImage(ctx context.Context, code, fileName string, data []byte) (*Temple, error) {
	if _, err := s.repo.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	ref, err := s.assets.Store(ctx, s.imageBucket, code, fileName, data)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateByCode(ctx, code, map[string]interface{}{"image_ref": ref}); err != nil {
		return nil, err
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *service) AdjustPoints(ctx context.Context, code string, delta int64) (*Temple, error) {
	if err := s.ledger.ApplyPointsDelta(ctx, code, delta); err != nil {
		return nil, err
	}
	s.log.Infow("points adjusted", "temple_code", code, "delta", delta)
	return s.repo.GetByCode(ctx, code)
}

func (s *service) ReconcilePoints(ctx context.Context, code string) (*Temple, error) {
	if _, err := s.ledger.RecomputePoints(ctx, code); err != nil {
		return nil, err
	}
	return s.repo.GetByCode(ctx, code)
}
