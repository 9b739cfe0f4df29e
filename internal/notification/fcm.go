package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Pusher sends a push message to device tokens and reports the tokens that
// failed. Tokens FCM no longer recognizes are reported in stale.
type Pusher interface {
	Push(ctx context.Context, tokens []string, title, body string, data map[string]string) (failed, stale []string, err error)
}

// fcmBatchSize is the FCM multicast limit.
const fcmBatchSize = 500

type FCMPusher struct {
	client *messaging.Client
	log    *zap.SugaredLogger
}

func NewFCMPusher(client *messaging.Client, log *zap.SugaredLogger) *FCMPusher {
	return &FCMPusher{client: client, log: log.With("service", "FCMPusher")}
}

func (f *FCMPusher) Push(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, []string, error) {
	if f.client == nil {
		return nil, nil, fmt.Errorf("FCM client not initialized")
	}
	var failed, stale []string
	for i := 0; i < len(tokens); i += fcmBatchSize {
		end := i + fcmBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[i:end]

		resp, err := f.client.SendEachForMulticast(ctx, multicast(batch, title, body, data))
		if err != nil {
			f.log.Errorw("FCM multicast batch failed", "size", len(batch), "err", err)
			failed = append(failed, batch...)
			continue
		}
		for idx, r := range resp.Responses {
			if r.Success {
				continue
			}
			failed = append(failed, batch[idx])
			if messaging.IsUnregistered(r.Error) {
				stale = append(stale, batch[idx])
			}
		}
		f.log.Debugw("FCM multicast sent", "success", resp.SuccessCount, "failure", resp.FailureCount)
	}
	return failed, stale, nil
}

func multicast(tokens []string, title, body string, data map[string]string) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Data:   data,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:    "temple_waste_notifications",
				Priority:     messaging.PriorityHigh,
				DefaultSound: true,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: title,
				Body:  body,
				Icon:  "/icon-192x192.png",
			},
		},
	}
}

type nopPusher struct{}

// NopPusher is used when Firebase messaging is not configured.
func NopPusher() Pusher { return nopPusher{} }

func (nopPusher) Push(context.Context, []string, string, string, map[string]string) ([]string, []string, error) {
	return nil, nil, nil
}
