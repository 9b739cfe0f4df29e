package ngo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/asset"
	"github.com/sharath018/temple-waste-backend/internal/testdb"
)

type fakeTemples map[string]bool

func (f fakeTemples) Exists(_ context.Context, code string) (bool, error) { return f[code], nil }

func newTestService(t *testing.T) Service {
	t.Helper()
	db := testdb.Open(t, &NGO{})
	log := zap.NewNop().Sugar()
	return NewService(
		NewRepository(db),
		fakeTemples{"01": true, "02": true},
		asset.NewLocalStore(t.TempDir(), "http://localhost:8080", log),
		"ngo-logos",
		log,
	)
}

func ptr[T any](v T) *T { return &v }

func TestCreateValidatesAssignedTemple(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Create(ctx, CreateNGORequest{Name: "Green Hands", AssignedTempleCode: ptr("99")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	n, err := svc.Create(ctx, CreateNGORequest{Name: "Green Hands", AssignedTempleCode: ptr(" 01 ")})
	require.NoError(t, err)
	require.NotNil(t, n.AssignedTempleCode)
	assert.Equal(t, "01", *n.AssignedTempleCode)

	n, err = svc.Create(ctx, CreateNGORequest{Name: "Unassigned", AssignedTempleCode: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, n.AssignedTempleCode)

	_, err = svc.Create(ctx, CreateNGORequest{Name: "   "})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestUpdateReassignsAndClears(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	n, err := svc.Create(ctx, CreateNGORequest{Name: "Green Hands", AssignedTempleCode: ptr("01")})
	require.NoError(t, err)

	got, err := svc.Update(ctx, n.ID, UpdateNGORequest{AssignedTempleCode: ptr("02"), Contact: ptr("98450 00000")})
	require.NoError(t, err)
	assert.Equal(t, "02", *got.AssignedTempleCode)
	assert.Equal(t, "98450 00000", got.Contact)

	got, err = svc.Update(ctx, n.ID, UpdateNGORequest{ClearAssignment: true})
	require.NoError(t, err)
	assert.Nil(t, got.AssignedTempleCode)

	_, err = svc.Update(ctx, n.ID, UpdateNGORequest{AssignedTempleCode: ptr("missing")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Update(ctx, 9999, UpdateNGORequest{Name: ptr("x")})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListNewestFirstAndIdempotentDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	first, err := svc.Create(ctx, CreateNGORequest{Name: "first"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateNGORequest{Name: "second"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, first.ID))
	require.NoError(t, svc.Delete(ctx, first.ID))

	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Name)
}

func TestUploadLogoUsesSanitizedNameAsFolder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	n, err := svc.Create(ctx, CreateNGORequest{Name: "Green Hands / Mysuru"})
	require.NoError(t, err)

	got, err := svc.UploadLogo(ctx, n.ID, "logo.png", []byte("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.LogoRef, "http://localhost:8080/uploads/ngo-logos/Green_Hands___Mysuru/"), got.LogoRef)
}
