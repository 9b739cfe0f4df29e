package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/store"
)

type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	UpdatePassword(ctx context.Context, id, hash string) error

	CreateProfile(ctx context.Context, p *Profile) error
	FindProfile(ctx context.Context, id string) (*Profile, error)
	UpdateProfile(ctx context.Context, id string, patch map[string]interface{}) error
	// ProfilesLinkedToTemple returns temple profiles linked to the code and
	// NGO profiles whose NGO is assigned to it.
	ProfilesLinkedToTemple(ctx context.Context, templeCode string) ([]Profile, error)
	ListProfilesByRole(ctx context.Context, role string) ([]Profile, error)

	// Transaction runs fn against a repository bound to one transaction.
	Transaction(ctx context.Context, fn func(tx Repository) error) error
}

const ngoTable = "ngos"

type repository struct {
	db       *gorm.DB
	users    *store.Repository[User]
	profiles *store.Repository[Profile]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db:       db,
		users:    store.NewRepository[User](db),
		profiles: store.NewRepository[Profile](db),
	}
}

func (r *repository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{
			db:       tx,
			users:    r.users.WithTx(tx),
			profiles: r.profiles.WithTx(tx),
		})
	})
}

func (r *repository) CreateUser(ctx context.Context, u *User) error {
	err := r.users.Insert(ctx, u)
	if errors.Is(err, apperr.ErrConflict) {
		return apperr.Conflict("an account with this email already exists")
	}
	return err
}

func (r *repository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.users.Get(ctx, store.By("email", strings.ToLower(strings.TrimSpace(email))))
}

func (r *repository) FindUserByID(ctx context.Context, id string) (*User, error) {
	return r.users.Get(ctx, store.By("id", id))
}

func (r *repository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.users.Update(ctx, store.By("id", id), map[string]interface{}{"password_hash": hash})
}

func (r *repository) CreateProfile(ctx context.Context, p *Profile) error {
	return r.profiles.Insert(ctx, p)
}

func (r *repository) FindProfile(ctx context.Context, id string) (*Profile, error) {
	return r.profiles.Get(ctx, store.By("id", id))
}

func (r *repository) UpdateProfile(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.profiles.Update(ctx, store.By("id", id), patch)
}

func (r *repository) ProfilesLinkedToTemple(ctx context.Context, templeCode string) ([]Profile, error) {
	out := make([]Profile, 0)
	err := r.profiles.DB().WithContext(ctx).
		Where("temple_code = ?", templeCode).
		Or("ngo_id IN (?)", r.profiles.DB().Table(ngoTable).Select("id").Where("assigned_temple_code = ?", templeCode)).
		Order("created_at").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListProfilesByRole(ctx context.Context, role string) ([]Profile, error) {
	return r.profiles.List(ctx, store.Query{}.Where(store.Eq("role", role)))
}
