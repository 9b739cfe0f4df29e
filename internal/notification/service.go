package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/auth"
	"github.com/sharath018/temple-waste-backend/internal/events"
)

// Recipients resolves who hears about a temple's points.
type Recipients interface {
	ProfilesLinkedToTemple(ctx context.Context, templeCode string) ([]auth.Profile, error)
}

type Service interface {
	// HandlePointsAwarded stores an in-app notification for every linked
	// profile and pushes to their devices. Push failures after the in-app
	// rows are stored come back as a PartialFailure with the report.
	HandlePointsAwarded(ctx context.Context, env events.Envelope) (*DeliveryReport, error)
	// ConsumerHandler adapts HandlePointsAwarded for the Kafka consumer.
	ConsumerHandler() events.Handler

	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]InAppNotification, error)
	MarkRead(ctx context.Context, userID string, id uint) error
	RegisterDevice(ctx context.Context, userID string, req RegisterDeviceRequest) (*DeviceToken, error)
}

type service struct {
	repo       Repository
	recipients Recipients
	pusher     Pusher
	log        *zap.SugaredLogger
}

func NewService(repo Repository, recipients Recipients, pusher Pusher, log *zap.SugaredLogger) Service {
	if pusher == nil {
		pusher = NopPusher()
	}
	return &service{
		repo:       repo,
		recipients: recipients,
		pusher:     pusher,
		log:        log.With("service", "NotificationService"),
	}
}

func (s *service) ConsumerHandler() events.Handler {
	return func(ctx context.Context, env events.Envelope) error {
		if env.Type != events.TypePointsAwarded {
			s.log.Debugw("ignoring event", "type", env.Type, "event_id", env.ID)
			return nil
		}
		report, err := s.HandlePointsAwarded(ctx, env)
		switch {
		case errors.Is(err, apperr.ErrPartialFailure):
			// in-app rows are stored; redelivery would only re-push
			s.log.Warnw("points.awarded partially delivered", "event_id", env.ID, "report", report, "err", err)
			return nil
		case errors.Is(err, apperr.ErrValidation):
			s.log.Errorw("dropping undecodable points.awarded", "event_id", env.ID, "err", err)
			return nil
		}
		return err
	}
}

func (s *service) HandlePointsAwarded(ctx context.Context, env events.Envelope) (*DeliveryReport, error) {
	var evt events.PointsAwarded
	if err := env.Decode(&evt); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "bad points.awarded payload")
	}
	profiles, err := s.recipients.ProfilesLinkedToTemple(ctx, evt.TempleCode)
	if err != nil {
		return nil, fmt.Errorf("resolve recipients for %s: %w", evt.TempleCode, err)
	}

	report := &DeliveryReport{Recipients: len(profiles)}
	if len(profiles) == 0 {
		return report, nil
	}

	title, body := pointsMessage(evt)
	userIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		userIDs = append(userIDs, p.ID)
		stored, err := s.repo.StoreInApp(ctx, &InAppNotification{
			UserID:     p.ID,
			EventID:    env.ID,
			TempleCode: evt.TempleCode,
			Title:      title,
			Message:    body,
			Category:   CategoryPoints,
			Payload:    env.Payload,
		})
		if err != nil {
			return report, fmt.Errorf("store notification for %s: %w", p.ID, err)
		}
		if stored {
			report.Stored++
		}
	}

	tokens, err := s.repo.ActiveTokens(ctx, userIDs)
	if err != nil {
		return report, apperr.Wrap(apperr.KindPartialFailure, err, "device lookup failed")
	}
	if len(tokens) == 0 {
		return report, nil
	}

	failed, stale, err := s.pusher.Push(ctx, tokens, title, body, map[string]string{
		"type":          events.TypePointsAwarded,
		"temple_code":   evt.TempleCode,
		"day":           evt.Day,
		"temple_points": strconv.FormatInt(evt.TemplePoints, 10),
	})
	if err != nil {
		report.PushFailed = len(tokens)
		return report, apperr.Wrap(apperr.KindPartialFailure, err, "push not sent")
	}
	report.Pushed = len(tokens) - len(failed)
	report.PushFailed = len(failed)

	if len(stale) > 0 {
		if err := s.repo.Deactivate(ctx, stale); err != nil {
			s.log.Warnw("stale device tokens not deactivated", "count", len(stale), "err", err)
		} else {
			report.Deactivated = len(stale)
		}
	}
	if report.PushFailed > 0 {
		return report, apperr.New(apperr.KindPartialFailure, "push failed for %d of %d devices", report.PushFailed, len(tokens))
	}
	s.log.Infow("points.awarded delivered", "event_id", env.ID, "temple_code", evt.TempleCode,
		"stored", report.Stored, "pushed", report.Pushed)
	return report, nil
}

func pointsMessage(evt events.PointsAwarded) (string, string) {
	title := "Donation points updated"
	var b strings.Builder
	if evt.Overwrote {
		fmt.Fprintf(&b, "The collection for %s was corrected", evt.Day)
	} else {
		fmt.Fprintf(&b, "A collection was recorded for %s", evt.Day)
	}
	fmt.Fprintf(&b, ": %d points (%+d). Temple total is now %d.", evt.Points, evt.Delta, evt.TemplePoints)
	return title, b.String()
}

func (s *service) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]InAppNotification, error) {
	return s.repo.ListForUser(ctx, userID, unreadOnly, limit)
}

func (s *service) MarkRead(ctx context.Context, userID string, id uint) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *service) RegisterDevice(ctx context.Context, userID string, req RegisterDeviceRequest) (*DeviceToken, error) {
	token := strings.TrimSpace(req.DeviceToken)
	if token == "" {
		return nil, apperr.Validation("device_token is required")
	}
	d := &DeviceToken{
		UserID:      userID,
		DeviceToken: token,
		DeviceType:  req.DeviceType,
		DeviceName:  req.DeviceName,
		IsActive:    true,
		LastUsedAt:  time.Now().UTC(),
	}
	if err := s.repo.UpsertDevice(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
