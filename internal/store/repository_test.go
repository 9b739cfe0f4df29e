package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/testdb"
)

type widget struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Bucket    string    `gorm:"uniqueIndex:idx_bucket_day" json:"bucket"`
	Day       string    `gorm:"uniqueIndex:idx_bucket_day" json:"day"`
	Qty       int       `json:"qty" validate:"gte=0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newRepo(t *testing.T) *Repository[widget] {
	return NewRepository[widget](testdb.Open(t, &widget{}))
}

func TestListEmptyIsNotAnError(t *testing.T) {
	repo := newRepo(t)

	got, err := repo.List(context.Background(), Query{}.Where(Eq("code", "nope")))

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInsertValidationAndConflict(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	err := repo.Insert(ctx, &widget{Code: "", Name: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Contains(t, err.Error(), "code is required")

	require.NoError(t, repo.Insert(ctx, &widget{Code: "01", Name: "first", Bucket: "a", Day: "1"}))
	err = repo.Insert(ctx, &widget{Code: "01", Name: "again", Bucket: "b", Day: "1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestUpdateByNaturalKey(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.Insert(ctx, &widget{Code: "01", Name: "first"}))

	require.NoError(t, repo.Update(ctx, By("code", "01"), map[string]interface{}{"name": "renamed"}))
	got, err := repo.Get(ctx, By("code", "01"))
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	err = repo.Update(ctx, By("code", "missing"), map[string]interface{}{"name": "x"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpsertOverwritesNonKeyFields(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Upsert(ctx, &widget{Code: "a1", Name: "one", Bucket: "t", Day: "d", Qty: 1}, "bucket", "day"))
	require.NoError(t, repo.Upsert(ctx, &widget{Code: "a2", Name: "two", Bucket: "t", Day: "d", Qty: 9}, "bucket", "day"))

	rows, err := repo.List(ctx, Query{}.Where(Eq("bucket", "t"), Eq("day", "d")))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "two", rows[0].Name)
	assert.Equal(t, 9, rows[0].Qty)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.Insert(ctx, &widget{Code: "01", Name: "first"}))

	require.NoError(t, repo.Delete(ctx, By("code", "01")))
	require.NoError(t, repo.Delete(ctx, By("code", "01")))
	require.NoError(t, repo.Delete(ctx, By("code", "never-existed")))

	n, err := repo.Count(ctx, Query{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListOrderLimitAndBadColumns(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	for i, code := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Insert(ctx, &widget{Code: code, Name: code, Bucket: "b-" + code, Day: "2025-01-01", Qty: i}))
	}

	rows, err := repo.List(ctx, Query{}.OrderBy("code", false).Take(2))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Code)
	assert.Equal(t, "b", rows[1].Code)

	_, err = repo.List(ctx, Query{}.Where(Eq("code; DROP TABLE widgets", "x")))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
