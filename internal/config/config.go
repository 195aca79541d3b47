package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	JWTSecret     string
	PublicBaseURL string
	CORSOrigin    string
	InternalKey   string

	// UploadsDir holds files written by earlier versions, served under /uploads.
	UploadsDir string
	UploadsURL string

	KafkaBroker        string
	KafkaListingsTopic string

	// ImageFetchConcurrency bounds the per-row image lookups issued while
	// assembling one page of listings.
	ImageFetchConcurrency int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    getEnv("APP_PORT", "5000"),
		AppEnv:     getEnv("APP_ENV", "development"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:5000/api"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:3000"),
		InternalKey:   os.Getenv("INTERNAL_SECRET_KEY"),

		UploadsDir: getEnv("UPLOADS_DIR", "uploads"),
		UploadsURL: getEnv("UPLOADS_BASE_URL", "http://localhost:5000/uploads"),

		KafkaBroker:        os.Getenv("KAFKA_BROKER"),
		KafkaListingsTopic: getEnv("KAFKA_TOPIC_LISTINGS", "crop-posts.events"),

		ImageFetchConcurrency: getEnvInt("IMAGE_FETCH_CONCURRENCY", 8),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// IsDevelopment reports whether internal error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
