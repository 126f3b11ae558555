package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	ObjectStoreType  string
	AWSRegion        string
	S3Bucket         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3ForcePathStyle bool

	// StoreBaseURL is the public base of the object store, used to build the
	// fully-qualified file path stored with each record.
	StoreBaseURL string

	CVFolderTemplate        string
	CVMaxElements           int
	QuotaCountsReplacements bool

	UserServiceURL          string
	UserServiceTokenURL     string
	UserServiceClientID     string
	UserServiceClientSecret string

	SweepInterval time.Duration
	SweepGrace    time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,

		ObjectStoreType:  normalizeStoreType(getEnv("OBJECT_STORE", "memory")),
		AWSRegion:        getEnv("AWS_REGION", ""),
		S3Bucket:         getEnv("S3_BUCKET", "cv-bucket"),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:      getEnv("S3_SECRET_KEY", ""),
		S3ForcePathStyle: getEnvBool("S3_FORCE_PATH_STYLE", true),

		StoreBaseURL: getEnv("STORE_BASE_URL", "http://localhost:9000/"),

		CVFolderTemplate:        getEnv("CV_FOLDER_TEMPLATE", "users/{0}/cv/"),
		CVMaxElements:           getEnvInt("CV_MAX_ELEMENTS", 2),
		QuotaCountsReplacements: getEnvBool("CV_QUOTA_COUNTS_REPLACEMENTS", false),

		UserServiceURL:          getEnv("USER_SERVICE_URL", ""),
		UserServiceTokenURL:     getEnv("USER_SERVICE_TOKEN_URL", ""),
		UserServiceClientID:     getEnv("USER_SERVICE_CLIENT_ID", ""),
		UserServiceClientSecret: getEnv("USER_SERVICE_CLIENT_SECRET", ""),

		SweepInterval: getEnvDuration("CV_SWEEP_INTERVAL", time.Hour),
		SweepGrace:    getEnvDuration("CV_SWEEP_GRACE", time.Hour),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %t", key, raw, def)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3", "minio":
		return "s3"
	default:
		return "memory"
	}
}
