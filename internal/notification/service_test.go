package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/auth"
	"github.com/sharath018/temple-waste-backend/internal/events"
	"github.com/sharath018/temple-waste-backend/internal/ngo"
	"github.com/sharath018/temple-waste-backend/internal/testdb"
)

type fakePusher struct {
	sent   [][]string
	failed []string
	stale  []string
	err    error
}

func (p *fakePusher) Push(_ context.Context, tokens []string, _, _ string, _ map[string]string) ([]string, []string, error) {
	p.sent = append(p.sent, tokens)
	return p.failed, p.stale, p.err
}

type fixture struct {
	db     *gorm.DB
	repo   Repository
	svc    Service
	pusher *fakePusher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t, &auth.Profile{}, &ngo.NGO{}, &InAppNotification{}, &DeviceToken{})
	pusher := &fakePusher{}
	repo := NewRepository(db)
	return &fixture{
		db:     db,
		repo:   repo,
		svc:    NewService(repo, auth.NewRepository(db), pusher, zap.NewNop().Sugar()),
		pusher: pusher,
	}
}

func strPtr(s string) *string { return &s }

// seed links a temple profile and an NGO profile to temple 01, and one
// temple profile to 02.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	n := &ngo.NGO{Name: "Green Hands", AssignedTempleCode: strPtr("01")}
	require.NoError(t, f.db.Create(n).Error)
	require.NoError(t, f.db.Create(&[]auth.Profile{
		{ID: "u-temple", Email: "t@example.org", Role: auth.RoleTemple, TempleCode: strPtr("01")},
		{ID: "u-ngo", Email: "n@example.org", Role: auth.RoleNGO, NGOID: &n.ID},
		{ID: "u-other", Email: "o@example.org", Role: auth.RoleTemple, TempleCode: strPtr("02")},
		{ID: "u-admin", Email: "a@example.org", Role: auth.RoleAdmin},
	}).Error)
}

func pointsEvent(t *testing.T, code string) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(events.TypePointsAwarded, events.PointsAwarded{
		TempleCode: code, Day: "2025-01-01", Points: 5, Delta: 5, TemplePoints: 8,
	})
	require.NoError(t, err)
	return env
}

func TestPointsAwardedNotifiesLinkedProfiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	_, err := f.svc.RegisterDevice(ctx, "u-temple", RegisterDeviceRequest{DeviceToken: "tok-temple", DeviceType: "android"})
	require.NoError(t, err)
	_, err = f.svc.RegisterDevice(ctx, "u-other", RegisterDeviceRequest{DeviceToken: "tok-other"})
	require.NoError(t, err)

	env := pointsEvent(t, "01")
	report, err := f.svc.HandlePointsAwarded(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, &DeliveryReport{Recipients: 2, Stored: 2, Pushed: 1}, report)
	require.Len(t, f.pusher.sent, 1)
	assert.Equal(t, []string{"tok-temple"}, f.pusher.sent[0])

	for _, id := range []string{"u-temple", "u-ngo"} {
		list, err := f.svc.List(ctx, id, false, 0)
		require.NoError(t, err)
		require.Len(t, list, 1, id)
		assert.Contains(t, list[0].Message, "Temple total is now 8")
	}
	other, err := f.svc.List(ctx, "u-other", false, 0)
	require.NoError(t, err)
	assert.Empty(t, other)

	// redelivery stores nothing new
	report, err = f.svc.HandlePointsAwarded(ctx, env)
	require.NoError(t, err)
	assert.Zero(t, report.Stored)
}

func TestPushFailureIsPartial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	for _, tok := range []string{"good", "gone"} {
		_, err := f.svc.RegisterDevice(ctx, "u-temple", RegisterDeviceRequest{DeviceToken: tok})
		require.NoError(t, err)
	}
	f.pusher.failed = []string{"gone"}
	f.pusher.stale = []string{"gone"}

	report, err := f.svc.HandlePointsAwarded(ctx, pointsEvent(t, "01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrPartialFailure))
	assert.Equal(t, 2, report.Stored)
	assert.Equal(t, 1, report.Pushed)
	assert.Equal(t, 1, report.Deactivated)

	tokens, err := f.repo.ActiveTokens(ctx, []string{"u-temple"})
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, tokens)

	// the consumer treats partial delivery as handled
	assert.NoError(t, f.svc.ConsumerHandler()(ctx, pointsEvent(t, "01")))
}

func TestConsumerHandlerSkipsOtherEvents(t *testing.T) {
	f := newFixture(t)
	env, err := events.NewEnvelope("something.else", map[string]string{})
	require.NoError(t, err)
	assert.NoError(t, f.svc.ConsumerHandler()(context.Background(), env))
	assert.Empty(t, f.pusher.sent)
}

func TestMarkReadOnlyOwnNotifications(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	_, err := f.svc.HandlePointsAwarded(ctx, pointsEvent(t, "01"))
	require.NoError(t, err)

	list, err := f.svc.List(ctx, "u-temple", true, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	err = f.svc.MarkRead(ctx, "u-ngo", id)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, f.svc.MarkRead(ctx, "u-temple", id))
	unread, err := f.svc.List(ctx, "u-temple", true, 10)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestRegisterDeviceRebindsToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.RegisterDevice(ctx, "u-1", RegisterDeviceRequest{DeviceToken: "shared"})
	require.NoError(t, err)
	_, err = f.svc.RegisterDevice(ctx, "u-2", RegisterDeviceRequest{DeviceToken: "shared"})
	require.NoError(t, err)

	var n int64
	require.NoError(t, f.db.Model(&DeviceToken{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	tokens, err := f.repo.ActiveTokens(ctx, []string{"u-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, tokens)

	_, err = f.svc.RegisterDevice(ctx, "u-1", RegisterDeviceRequest{DeviceToken: "  "})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
