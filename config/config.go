package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	LogMode string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTAccessSecret    string
	JWTRefreshSecret   string
	JWTAccessTTLHours  int
	JWTRefreshTTLHours int

	// Redis backs reset tokens, the logout denylist, session events and the rate limiter.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Kafka carries points.awarded events to the notification consumer.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string
	FrontendURL   string

	FirebaseCredentialsPath string
	FirebaseProjectID       string
	FirebaseStorageBucket   string

	// "local" or "firebase"
	AssetBackend      string
	UploadDir         string
	PublicBaseURL     string
	TempleImageBucket string
	NGOLogoBucket     string

	CORSOrigins []string

	ProfileRetryAttempts int
	ProfileRetryDelay    time.Duration

	// "atomic" or "read-modify-write"
	LedgerStrategy string
	// "reverse" or "accumulate"
	PointsOverwritePolicy string

	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	accessTTL, _ := strconv.Atoi(os.Getenv("JWT_ACCESS_TTL_HOURS"))
	refreshTTL, _ := strconv.Atoi(os.Getenv("JWT_REFRESH_TTL_HOURS"))
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	return &Config{
		Port:    getEnv("PORT", "8080"),
		LogMode: getEnv("LOG_MODE", "development"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTAccessSecret:    os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:   os.Getenv("JWT_REFRESH_SECRET"),
		JWTAccessTTLHours:  defaultInt(accessTTL, 1),
		JWTRefreshTTLHours: defaultInt(refreshTTL, 24*7),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "temple-waste-events"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "temple-waste-notifications"),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      os.Getenv("SMTP_PORT"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  os.Getenv("SMTP_FROM_NAME"),
		SMTPFromEmail: os.Getenv("SMTP_FROM_EMAIL"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseStorageBucket:   os.Getenv("FIREBASE_STORAGE_BUCKET"),

		AssetBackend:      getEnv("ASSET_BACKEND", "local"),
		UploadDir:         getEnv("UPLOAD_DIR", "/data/uploads"),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		TempleImageBucket: getEnv("TEMPLE_IMAGE_BUCKET", "temple-images"),
		NGOLogoBucket:     getEnv("NGO_LOGO_BUCKET", "ngo-logos"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),

		ProfileRetryAttempts: defaultInt(atoi(os.Getenv("PROFILE_RETRY_ATTEMPTS")), 6),
		ProfileRetryDelay:    time.Duration(defaultInt(atoi(os.Getenv("PROFILE_RETRY_DELAY_MS")), 400)) * time.Millisecond,

		LedgerStrategy:        getEnv("LEDGER_STRATEGY", "atomic"),
		PointsOverwritePolicy: getEnv("POINTS_OVERWRITE_POLICY", "reverse"),

		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
