package dailylog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/events"
	"github.com/sharath018/temple-waste-backend/internal/ledger"
)

// OverwritePolicy decides how a resubmitted day moves the temple total.
type OverwritePolicy string

const (
	// PolicyReverse backs out the previous log's points before adding the new
	// ones, so the total always equals the sum of current logs.
	PolicyReverse OverwritePolicy = "reverse"
	// PolicyAccumulate adds the new points on top without reversing the old
	// ones. Editing a day counts it twice.
	PolicyAccumulate OverwritePolicy = "accumulate"
)

func ParsePolicy(s string) (OverwritePolicy, error) {
	switch OverwritePolicy(s) {
	case "", PolicyReverse:
		return PolicyReverse, nil
	case PolicyAccumulate:
		return PolicyAccumulate, nil
	default:
		return "", fmt.Errorf("unknown points overwrite policy %q", s)
	}
}

type Service interface {
	Submit(ctx context.Context, in SubmitRequest) (*SubmitResult, error)
	List(ctx context.Context, f ListFilter) ([]DailyLog, error)
	Totals(ctx context.Context, templeCodes ...string) (Totals, error)
}

type service struct {
	db        *gorm.DB
	repo      Repository
	ledger    *ledger.Ledger
	policy    OverwritePolicy
	publisher events.Publisher
	log       *zap.SugaredLogger
}

func NewService(db *gorm.DB, repo Repository, l *ledger.Ledger, policy OverwritePolicy, publisher events.Publisher, log *zap.SugaredLogger) Service {
	if publisher == nil {
		publisher = events.NopPublisher()
	}
	return &service{
		db:        db,
		repo:      repo,
		ledger:    l,
		policy:    policy,
		publisher: publisher,
		log:       log.With("service", "DailyLogService"),
	}
}

func ParseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation("day must be YYYY-MM-DD")
	}
	return d, nil
}

// Submit records a collection for (temple, day). The log upsert and the
// points delta commit together; the points.awarded event goes out after.
func (s *service) Submit(ctx context.Context, in SubmitRequest) (*SubmitResult, error) {
	code := strings.TrimSpace(in.TempleCode)
	if code == "" {
		return nil, apperr.Validation("temple_code is required")
	}
	day, err := ParseDay(in.Day)
	if err != nil {
		return nil, err
	}
	points, err := ledger.ComputePoints(in.DryKg, in.WetKg, in.PlasticKg)
	if err != nil {
		return nil, err
	}

	res := &SubmitResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l := s.ledger.WithTx(tx)
		logs := s.repo.WithTx(tx)

		// Serializes submissions for one temple so two first writes of a day
		// cannot both count in full.
		if _, err := l.Lock(ctx, code); err != nil {
			return err
		}

		var previous int64
		prev, err := logs.Find(ctx, code, datatypes.Date(day))
		switch {
		case err == nil:
			previous = prev.Points
			res.Overwrote = true
		case !errors.Is(err, apperr.ErrNotFound):
			return err
		}

		entry := &DailyLog{
			TempleCode:  code,
			Day:         datatypes.Date(day),
			DryKg:       in.DryKg,
			WetKg:       in.WetKg,
			PlasticKg:   in.PlasticKg,
			Points:      points,
			CollectedBy: strings.TrimSpace(in.CollectedBy),
		}
		if err := logs.Upsert(ctx, entry); err != nil {
			return err
		}

		res.Delta = points
		if s.policy == PolicyReverse {
			res.Delta = points - previous
		}
		if err := l.ApplyPointsDelta(ctx, code, res.Delta); err != nil {
			return err
		}

		saved, err := logs.Find(ctx, code, datatypes.Date(day))
		if err != nil {
			return err
		}
		res.Log = *saved
		res.TemplePoints, err = l.Points(ctx, code)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("temple %q not found", code)
		}
		return nil, err
	}

	s.log.Infow("daily log recorded",
		"temple_code", code, "day", in.Day, "points", points,
		"delta", res.Delta, "overwrote", res.Overwrote, "policy", s.policy)
	s.publish(ctx, res)
	return res, nil
}

func (s *service) publish(ctx context.Context, res *SubmitResult) {
	env, err := events.NewEnvelope(events.TypePointsAwarded, events.PointsAwarded{
		TempleCode:   res.Log.TempleCode,
		Day:          res.Log.DayString(),
		Points:       res.Log.Points,
		Delta:        res.Delta,
		TemplePoints: res.TemplePoints,
		Overwrote:    res.Overwrote,
		CollectedBy:  res.Log.CollectedBy,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, res.Log.TempleCode, env)
	}
	if err != nil {
		s.log.Warnw("points.awarded not published", "temple_code", res.Log.TempleCode, "err", err)
	}
}

func (s *service) List(ctx context.Context, f ListFilter) ([]DailyLog, error) {
	return s.repo.List(ctx, f)
}

func (s *service) Totals(ctx context.Context, templeCodes ...string) (Totals, error) {
	return s.repo.Totals(ctx, templeCodes...)
}
