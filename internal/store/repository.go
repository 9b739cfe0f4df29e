package store

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Repository is the table-level contract every collection goes through:
// list, get, insert, partial update, upsert on a declared conflict key and
// idempotent delete. There is no cross-table transaction primitive here;
// callers that need one open it themselves and bind with WithTx.
type Repository[T any] struct {
	db *gorm.DB
}

func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

func (r *Repository[T]) DB() *gorm.DB { return r.db }

func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx}
}

func (r *Repository[T]) List(ctx context.Context, q Query) ([]T, error) {
	tx, err := r.apply(r.db.WithContext(ctx).Model(new(T)), q)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "invalid query")
	}
	out := make([]T, 0)
	if err := tx.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *Repository[T]) Count(ctx context.Context, q Query) (int64, error) {
	q.Order, q.Limit = nil, 0
	tx, err := r.apply(r.db.WithContext(ctx).Model(new(T)), q)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, err, "invalid query")
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (r *Repository[T]) Get(ctx context.Context, key Key) (*T, error) {
	if err := checkIdent(key.Field); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "invalid key")
	}
	var rec T
	err := r.db.WithContext(ctx).Where(key.Field+" = ?", key.Value).First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

// Insert fails with Validation when a required field is absent and with
// Conflict when a uniqueness constraint is violated.
func (r *Repository[T]) Insert(ctx context.Context, rec *T) error {
	if err := Validate(rec); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Update applies patch to the row matching key. No match is NotFound.
func (r *Repository[T]) Update(ctx context.Context, key Key, patch map[string]interface{}) error {
	if err := checkIdent(key.Field); err != nil {
		return apperr.Wrap(apperr.KindValidation, err, "invalid key")
	}
	if len(patch) == 0 {
		return apperr.Validation("nothing to update")
	}
	for col := range patch {
		if err := checkIdent(col); err != nil {
			return apperr.Wrap(apperr.KindValidation, err, "invalid patch")
		}
	}
	res := r.db.WithContext(ctx).Model(new(T)).Where(key.Field+" = ?", key.Value).Updates(patch)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("no record with %s = %v", key.Field, key.Value)
	}
	return nil
}

// Upsert inserts rec or, when a row with the same conflict columns exists,
// overwrites every non-key field of that row.
func (r *Repository[T]) Upsert(ctx context.Context, rec *T, conflict ...string) error {
	if len(conflict) == 0 {
		return apperr.Validation("upsert needs a conflict key")
	}
	if err := Validate(rec); err != nil {
		return err
	}
	cols := make([]clause.Column, 0, len(conflict))
	for _, c := range conflict {
		if err := checkIdent(c); err != nil {
			return apperr.Wrap(apperr.KindValidation, err, "invalid conflict key")
		}
		cols = append(cols, clause.Column{Name: c})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: cols, UpdateAll: true}).
		Create(rec).Error
	if err != nil {
		return translate(err)
	}
	return nil
}

// Delete removes the row matching key. Deleting a missing row is not an error.
func (r *Repository[T]) Delete(ctx context.Context, key Key) error {
	if err := checkIdent(key.Field); err != nil {
		return apperr.Wrap(apperr.KindValidation, err, "invalid key")
	}
	if err := r.db.WithContext(ctx).Where(key.Field+" = ?", key.Value).Delete(new(T)).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repository[T]) apply(tx *gorm.DB, q Query) (*gorm.DB, error) {
	for _, f := range q.Filters {
		cond, err := f.clause()
		if err != nil {
			return nil, err
		}
		tx = tx.Where(cond, f.Value)
	}
	for _, o := range q.Order {
		ord, err := o.clause()
		if err != nil {
			return nil, err
		}
		tx = tx.Order(ord)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx, nil
}

// Validate checks the `validate` tags of rec and reports missing or malformed
// fields as a Validation error.
func Validate(rec interface{}) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindValidation, err, "invalid record")
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" "+describe(fe))
	}
	return apperr.Validation("%s", strings.Join(parts, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.KindNotFound, err, "record not found")
	case IsDuplicate(err):
		return apperr.Wrap(apperr.KindConflict, err, "record already exists")
	default:
		return err
	}
}

// IsDuplicate reports a unique constraint violation from either driver.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint failed")
}
