package ngo

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/asset"
	"github.com/sharath018/temple-waste-backend/internal/store"
)

// TempleLookup is the slice of the temple repository NGOs need to validate
// an assignment.
type TempleLookup interface {
	Exists(ctx context.Context, code string) (bool, error)
}

type Service interface {
	Create(ctx context.Context, in CreateNGORequest) (*NGO, error)
	List(ctx context.Context) ([]NGO, error)
	Get(ctx context.Context, id uint) (*NGO, error)
	Update(ctx context.Context, id uint, in UpdateNGORequest) (*NGO, error)
	Delete(ctx context.Context, id uint) error
	UploadLogo(ctx context.Context, id uint, fileName string, data []byte) (*NGO, error)
}

type service struct {
	repo       Repository
	temples    TempleLookup
	assets     asset.Store
	logoBucket string
	log        *zap.SugaredLogger
}

func NewService(repo Repository, temples TempleLookup, assets asset.Store, logoBucket string, log *zap.SugaredLogger) Service {
	return &service{
		repo:       repo,
		temples:    temples,
		assets:     assets,
		logoBucket: logoBucket,
		log:        log.With("service", "NGOService"),
	}
}

func (s *service) Create(ctx context.Context, in CreateNGORequest) (*NGO, error) {
	code, err := s.checkAssignment(ctx, in.AssignedTempleCode)
	if err != nil {
		return nil, err
	}
	n := &NGO{
		Name:               strings.TrimSpace(in.Name),
		Contact:            strings.TrimSpace(in.Contact),
		AssignedTempleCode: code,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.log.Infow("ngo created", "ngo_id", n.ID, "assigned_temple_code", code)
	return n, nil
}

func (s *service) List(ctx context.Context) ([]NGO, error) {
	return s.repo.List(ctx, store.Query{}.OrderBy("created_at", true))
}

func (s *service) Get(ctx context.Context, id uint) (*NGO, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id uint, in UpdateNGORequest) (*NGO, error) {
	patch := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name is required")
		}
		patch["name"] = name
	}
	if in.Contact != nil {
		patch["contact"] = strings.TrimSpace(*in.Contact)
	}
	switch {
	case in.ClearAssignment:
		patch["assigned_temple_code"] = nil
	case in.AssignedTempleCode != nil:
		code, err := s.checkAssignment(ctx, in.AssignedTempleCode)
		if err != nil {
			return nil, err
		}
		patch["assigned_temple_code"] = code
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Infow("ngo deleted", "ngo_id", id)
	return nil
}

func (s *service) UploadLogo(ctx context.Context, id uint, fileName string, data []byte) (*NGO, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	hint := n.Name
	if hint == "" {
		hint = "ngo"
	}
	ref, err := s.assets.Store(ctx, s.logoBucket, hint, fileName, data)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, map[string]interface{}{"logo_ref": ref}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// checkAssignment normalizes an optional temple code: blank means no
// assignment, anything else must name an existing temple.
func (s *service) checkAssignment(ctx context.Context, code *string) (*string, error) {
	if code == nil {
		return nil, nil
	}
	c := strings.TrimSpace(*code)
	if c == "" {
		return nil, nil
	}
	ok, err := s.temples.Exists(ctx, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Validation("assigned temple %q does not exist", c)
	}
	return &c, nil
}
