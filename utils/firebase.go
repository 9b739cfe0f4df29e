package utils

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/sharath018/temple-waste-backend/config"
)

// Firebase bundles the admin app and the FCM client. Messaging is nil when
// the app came up but FCM did not.
type Firebase struct {
	App       *firebase.App
	Messaging *messaging.Client
}

// InitFirebase initializes the Firebase Admin SDK from the configured
// service account. A missing credentials file or project id is an error the
// caller may treat as "run without Firebase".
func InitFirebase(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*Firebase, error) {
	path := cfg.FirebaseCredentialsPath
	if path == "" {
		path = "./serviceAccountKey.json"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found: %s", path)
	}
	if cfg.FirebaseProjectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.FirebaseStorageBucket,
	}, option.WithCredentialsFile(path))
	if err != nil {
		return nil, fmt.Errorf("firebase app initialization failed: %w", err)
	}
	log.Infow("firebase app initialized", "project", cfg.FirebaseProjectID)

	fb := &Firebase{App: app}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Warnw("FCM client unavailable, push notifications disabled", "err", err)
		return fb, nil
	}
	fb.Messaging = client
	return fb, nil
}

// FCMEnabled reports whether push notifications can be sent.
func (f *Firebase) FCMEnabled() bool {
	return f != nil && f.Messaging != nil
}
