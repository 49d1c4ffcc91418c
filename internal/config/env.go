package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Optional: empty disables upload history records.
	DatabaseURL string
	SslCertPath string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	// Optional: empty disables the cloud vision strategy entirely.
	GeminiAPIKey string
	GenModel     string
	VisionModel  string

	// Extraction tuning. The threshold and quota values are heuristics
	// carried over from production; they are knobs, not invariants.
	ConfidenceThreshold int
	VisionQuotaCalls    int
	VisionQuotaPause    time.Duration
	RenderZoom          float64
	OCRLanguages        string

	// Retrieval tuning.
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	ChatRPM      int
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SslCertPath: getEnv("SSL_CERT_PATH", ""),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "studyai-docs"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		VisionModel:  getEnv("VISION_MODEL", "gemini-2.0-flash-lite"),

		ConfidenceThreshold: getEnvInt("CONFIDENCE_THRESHOLD", 50),
		VisionQuotaCalls:    getEnvInt("VISION_QUOTA_CALLS", 25),
		VisionQuotaPause:    time.Duration(getEnvInt("VISION_QUOTA_PAUSE_SECONDS", 70)) * time.Second,
		RenderZoom:          getEnvFloat("RENDER_ZOOM", 2.0),
		OCRLanguages:        getEnv("OCR_LANGUAGES", "eng"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		TopK:         getEnvInt("RETRIEVAL_TOP_K", 3),
		ChatRPM:      getEnvInt("CHAT_RPM", 30),
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		log.Printf("WARN: CHUNK_OVERLAP %d >= CHUNK_SIZE %d, falling back to defaults", cfg.ChunkOverlap, cfg.ChunkSize)
		cfg.ChunkSize = 1000
		cfg.ChunkOverlap = 200
	}

	return cfg
}

// VisionEnabled reports whether a cloud vision credential is configured.
func (c *Config) VisionEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %g", key, v, def)
		return def
	}
	return f
}
