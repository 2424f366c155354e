package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	AppEnv string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTAccessSecret      string
	JWTRefreshSecret     string
	JWTAccessTTLHours    int
	JWTRefreshTTLHours   int
	AdminSessionTTLHours int

	// Default admin created on first boot
	DefaultAdminEmail    string
	DefaultAdminUsername string
	DefaultAdminPassword string

	// Redis cache (disabled when RedisAddr is empty)
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLMinutes int

	// Kafka catalog events (in-process dispatch when KafkaBrokers is empty)
	KafkaBrokers      []string
	KafkaCatalogTopic string
	KafkaGroupID      string

	// SMTP
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string
	FrontendURL   string

	// Firebase (Google sign-in)
	FirebaseCredentialsPath string
	FirebaseProjectID       string

	CORSAllowedOrigins []string
	MaxUploadMB        int
	RateLimitPerMinute int

	// Tracing
	OtelEnabled     bool
	OtelEndpoint    string
	OtelInsecure    bool
	OtelSampleRatio float64
	OtelServiceName string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "idea_factory"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTAccessSecret:      os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:     os.Getenv("JWT_REFRESH_SECRET"),
		JWTAccessTTLHours:    getInt("JWT_ACCESS_TTL_HOURS", 24),
		JWTRefreshTTLHours:   getInt("JWT_REFRESH_TTL_HOURS", 168),
		AdminSessionTTLHours: getInt("ADMIN_SESSION_TTL_HOURS", 24),

		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", "admin@10000ideas.com"),
		DefaultAdminUsername: getEnv("DEFAULT_ADMIN_USERNAME", "admin"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getInt("REDIS_DB", 0),
		CacheTTLMinutes: getInt("CACHE_TTL_MINUTES", 30),

		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaCatalogTopic: getEnv("KAFKA_TOPIC_CATALOG", "idea-catalog-events"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "idea-factory-notifications"),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  os.Getenv("SMTP_FROM_NAME"),
		SMTPFromEmail: os.Getenv("SMTP_FROM_EMAIL"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),

		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000")),
		MaxUploadMB:        getInt("MAX_UPLOAD_MB", 10),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 100),

		OtelEnabled:     getBool("OTEL_ENABLED"),
		OtelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelInsecure:    getBool("OTEL_EXPORTER_OTLP_INSECURE"),
		OtelSampleRatio: getRatio("OTEL_SAMPLER_RATIO", 0.1),
		OtelServiceName: getEnv("OTEL_SERVICE_NAME", "idea-factory-backend"),
	}
}

// DSN builds the postgres connection string for the pgx driver.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production") || strings.EqualFold(c.AppEnv, "prod")
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// getRatio clamps to [0,1].
func getRatio(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return fallback
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
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
