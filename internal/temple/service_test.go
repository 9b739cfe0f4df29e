package temple

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/asset"
	"github.com/sharath018/temple-waste-backend/internal/ledger"
	"github.com/sharath018/temple-waste-backend/internal/testdb"
)

// logRow stands in for the daily log table.
type logRow struct {
	ID         uint `gorm:"primaryKey"`
	TempleCode string
	Points     int64
}

func (logRow) TableName() string { return logsTable }

func newTestService(t *testing.T) Service {
	svc, _ := newTestServiceDB(t)
	return svc
}

func newTestServiceDB(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t, &Temple{}, &logRow{})
	log := zap.NewNop().Sugar()
	return NewService(
		NewRepository(db),
		ledger.New(db, ledger.StrategyAtomic, log),
		asset.NewLocalStore(t.TempDir(), "http://localhost:8080", log),
		"temple-images",
		log,
	), db
}

func ptr[T any](v T) *T { return &v }

func TestCreateRequiresCodeAndName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateTempleRequest{UniqueCode: "  ", Name: "X"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(context.Background(), CreateTempleRequest{UniqueCode: "01"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(context.Background(), CreateTempleRequest{UniqueCode: "01", Name: "X", DonationPercent: 140})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateDuplicateCodeIsConflict(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Create(ctx, CreateTempleRequest{UniqueCode: "01", Name: "Sri Ranganatha"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateTempleRequest{UniqueCode: "01", Name: "Another"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Contains(t, err.Error(), `"01"`)
}

func TestUpdateIsPartialAndKeepsCode(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.Create(ctx, CreateTempleRequest{UniqueCode: "01", Name: "Old", Address: "Main St"})
	require.NoError(t, err)

	got, err := svc.Update(ctx, "01", UpdateTempleRequest{Name: ptr("New"), IsHistoric: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, "Main St", got.Address)
	assert.True(t, got.IsHistoric)

	_, err = svc.Update(ctx, "01", UpdateTempleRequest{UniqueCode: ptr("02")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Update(ctx, "01", UpdateTempleRequest{Latitude: ptr(120.0)})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Update(ctx, "nope", UpdateTempleRequest{Name: ptr("X")})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteUnknownCodeSucceeds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.Create(ctx, CreateTempleRequest{UniqueCode: "01", Name: "X"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "does-not-exist"))
	require.NoError(t, svc.Delete(ctx, "01"))
	require.NoError(t, svc.Delete(ctx, "01"))

	_, err = svc.Get(ctx, "01")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListOrdersByNameAndFilters(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	for _, in := range []CreateTempleRequest{
		{UniqueCode: "03", Name: "Chamundeshwari", IsHistoric: true},
		{UniqueCode: "01", Name: "Annapoorneshwari"},
		{UniqueCode: "02", Name: "Banashankari", IsHistoric: true},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "01", all[0].UniqueCode)

	historic, err := svc.List(ctx, ListFilter{Historic: ptr(true)})
	require.NoError(t, err)
	require.Len(t, historic, 2)
	assert.Equal(t, "02", historic[0].UniqueCode)

	nonHistoric, err := svc.List(ctx, ListFilter{Historic: ptr(false), Limit: 0})
	require.NoError(t, err)
	assert.Len(t, nonHistoric, 1)
}

func TestUploadImageRecordsReference(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.Create(ctx, CreateTempleRequest{UniqueCode: "T 01", Name: "X"})
	require.NoError(t, err)

	got, err := svc.UploadImage(ctx, "T 01", "front gate.jpg", []byte("jpeg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.ImageRef, "http://localhost:8080/uploads/temple-images/T_01/"), got.ImageRef)
	assert.True(t, strings.HasSuffix(got.ImageRef, "-front_gate.jpg"), got.ImageRef)

	_, err = svc.UploadImage(ctx, "missing", "a.jpg", []byte("x"))
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestAdjustPoints(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.Create(ctx, CreateTempleRequest{UniqueCode: "01", Name: "X"})
	require.NoError(t, err)

	_, err = svc.AdjustPoints(ctx, "01", 6)
	require.NoError(t, err)
	got, err := svc.AdjustPoints(ctx, "01", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.DonationPoints)
}

func TestHandlerDeleteAndConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(newTestService(t))
	r := gin.New()
	r.POST("/temples", h.CreateTemple)
	r.DELETE("/temples/:code", h.DeleteTemple)

	body := `{"unique_code":"01","name":"X"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/temples", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/temples", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/temples/never-was", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/temples", strings.NewReader(`{"name":"no code"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateWithOnlyMatchingCodeReturnsTemple(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.Create(ctx, CreateTempleRequest{UniqueCode: "01", Name: "Sri Rama"})
	require.NoError(t, err)

	got, err := svc.Update(ctx, "01", UpdateTempleRequest{UniqueCode: ptr("01")})
	require.NoError(t, err)
	assert.Equal(t, "Sri Rama", got.Name)

	got, err = svc.Update(ctx, "01", UpdateTempleRequest{})
	require.NoError(t, err)
	assert.Equal(t, "01", got.UniqueCode)

	_, err = svc.Update(ctx, "nope", UpdateTempleRequest{})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteWithLogsIsConflict(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestServiceDB(t)
	_, err := svc.Create(ctx, CreateTempleRequest{UniqueCode: "01", Name: "Sri Rama"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&logRow{TempleCode: "01", Points: 10}).Error)

	err = svc.Delete(ctx, "01")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	// the code stays taken, so a new temple cannot inherit the old logs
	_, err = svc.Create(ctx, CreateTempleRequest{UniqueCode: "01", Name: "Another"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	got, err := svc.Get(ctx, "01")
	require.NoError(t, err)
	assert.Equal(t, "Sri Rama", got.Name)

	require.NoError(t, db.Where("temple_code = ?", "01").Delete(&logRow{}).Error)
	require.NoError(t, svc.Delete(ctx, "01"))
}
