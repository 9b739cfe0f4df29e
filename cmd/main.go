package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sharath018/temple-waste-backend/config"
	"github.com/sharath018/temple-waste-backend/database"
	"github.com/sharath018/temple-waste-backend/internal/asset"
	"github.com/sharath018/temple-waste-backend/internal/auth"
	"github.com/sharath018/temple-waste-backend/internal/dailylog"
	"github.com/sharath018/temple-waste-backend/internal/dashboard"
	"github.com/sharath018/temple-waste-backend/internal/events"
	"github.com/sharath018/temple-waste-backend/internal/inventory"
	"github.com/sharath018/temple-waste-backend/internal/ledger"
	"github.com/sharath018/temple-waste-backend/internal/ngo"
	"github.com/sharath018/temple-waste-backend/internal/notification"
	"github.com/sharath018/temple-waste-backend/internal/reports"
	"github.com/sharath018/temple-waste-backend/internal/temple"
	"github.com/sharath018/temple-waste-backend/routes"
	"github.com/sharath018/temple-waste-backend/utils"
)

// @title Temple Waste Collection API
// @version 1.0
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log, err := utils.NewLogger(cfg.LogMode)
	if err != nil {
		panic(fmt.Sprintf("logger init failed: %v", err))
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatalw("server stopped", "err", err)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if err := migrate(db); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Info("database migrations completed")

	rdb, err := utils.InitRedis(cfg)
	if err != nil {
		return fmt.Errorf("redis init: %w", err)
	}
	var (
		tokens auth.TokenStore = auth.NewMemoryTokenStore()
		bus    auth.SessionBus = auth.NewLocalSessionBus()
	)
	if rdb != nil {
		defer rdb.Close()
		tokens = auth.NewRedisTokenStore(rdb)
		bus = auth.NewRedisSessionBus(rdb, log)
	} else {
		log.Warn("REDIS_ADDR not set, tokens and session events are process-local")
	}

	fb, err := utils.InitFirebase(ctx, cfg, log)
	if err != nil {
		log.Warnw("continuing without Firebase", "err", err)
	}
	var pusher notification.Pusher = notification.NopPusher()
	if fb.FCMEnabled() {
		pusher = notification.NewFCMPusher(fb.Messaging, log)
	}
	assets, err := newAssetStore(ctx, cfg, fb, log)
	if err != nil {
		return err
	}

	publisher := events.NopPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
	} else {
		log.Warn("KAFKA_BROKERS not set, points events are not published")
	}

	strategy, err := ledger.ParseStrategy(cfg.LedgerStrategy)
	if err != nil {
		return err
	}
	policy, err := dailylog.ParsePolicy(cfg.PointsOverwritePolicy)
	if err != nil {
		return err
	}
	pointsLedger := ledger.New(db, strategy, log)

	// ========== Repositories & services ==========
	authRepo := auth.NewRepository(db)
	templeRepo := temple.NewRepository(db)
	ngoRepo := ngo.NewRepository(db)
	logRepo := dailylog.NewRepository(db)
	inventorySvc := inventory.NewService(inventory.NewRepository(db), log)

	authSvc := auth.NewService(auth.Deps{
		Repo:    authRepo,
		Tokens:  tokens,
		Bus:     bus,
		Mailer:  utils.NewSMTPMailer(cfg, log),
		Temples: templeRepo,
		NGOs:    ngoRepo,
	}, auth.Options{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		RefreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
		Retry:         auth.RetryPolicy{Attempts: cfg.ProfileRetryAttempts, Delay: cfg.ProfileRetryDelay},
		ResetURL:      strings.TrimRight(cfg.FrontendURL, "/") + "/reset-password",
	}, log)
	if cfg.SeedAdminEmail != "" {
		if err := authSvc.SeedAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	notificationSvc := notification.NewService(notification.NewRepository(db), authRepo, pusher, log)

	svc := routes.Services{
		Auth:          authSvc,
		Temples:       temple.NewService(templeRepo, pointsLedger, assets, cfg.TempleImageBucket, log),
		NGOs:          ngo.NewService(ngoRepo, templeRepo, assets, cfg.NGOLogoBucket, log),
		Inventory:     inventorySvc,
		DailyLogs:     dailylog.NewService(db, logRepo, pointsLedger, policy, publisher, log),
		Dashboards:    dashboard.NewService(templeRepo, ngoRepo, inventorySvc, logRepo, log),
		Reports:       reports.NewService(reports.NewRepository(db), log),
		Notifications: notificationSvc,
	}

	if len(cfg.KafkaBrokers) > 0 {
		consumer := events.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, log)
		go func() {
			if err := consumer.Run(ctx, notificationSvc.ConsumerHandler()); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorw("notification consumer stopped", "err", err)
			}
		}()
	}

	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	routes.Setup(router, cfg, svc, rdb, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&auth.User{},
		&auth.Profile{},
		&temple.Temple{},
		&ngo.NGO{},
		&inventory.Item{},
		&dailylog.DailyLog{},
		&notification.InAppNotification{},
		&notification.DeviceToken{},
	)
}

func newAssetStore(ctx context.Context, cfg *config.Config, fb *utils.Firebase, log *zap.SugaredLogger) (asset.Store, error) {
	if cfg.AssetBackend == "firebase" {
		if fb == nil {
			return nil, fmt.Errorf("ASSET_BACKEND=firebase but Firebase is not initialized")
		}
		return asset.NewFirebaseStore(ctx, fb.App, cfg.FirebaseStorageBucket, log)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return asset.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL, log), nil
}

func requestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}
