package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"
	StorageDriverMemory   = "memory"

	EnvDevelopment = "development"

	// DefaultJWTSecret is only accepted when APP_ENV is development.
	DefaultJWTSecret = "change-me-in-production"
)

type Config struct {
	ServerPort string
	AppEnv     string
	LogLevel   string

	StorageDriver string

	DBDriver   string // "pgx" (jackc/pgx stdlib) or "postgres" (lib/pq)
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	MongoURI      string
	MongoDatabase string

	AWSRegion       string
	SQSGateQueueURL string

	JWTSecret          string
	JWTExpirationHours time.Duration

	SpotCount int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("config: could not load .env file: %v", err)
	}

	// Malformed numbers load as zero and are rejected by Validate.
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	spotCount, _ := strconv.Atoi(getEnv("SPOT_COUNT", "100"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "3000"),
		AppEnv:     getEnv("APP_ENV", "production"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		StorageDriver: getEnv("STORAGE_DRIVER", StorageDriverPostgres),

		DBDriver:   getEnv("DB_DRIVER", "pgx"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "parking"),
		DBPassword: getEnv("DB_PASSWORD", "parking"),
		DBName:     getEnv("DB_NAME", "parking_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "parking"),

		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		SQSGateQueueURL: getEnv("SQS_GATE_QUEUE_URL", ""),

		JWTSecret:          getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpirationHours: time.Duration(jwtExpHours) * time.Hour,

		SpotCount: spotCount,
	}
}

// Validate reports configuration that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverMongo, StorageDriverMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageDriver == StorageDriverPostgres && c.DBDriver != "pgx" && c.DBDriver != "postgres" {
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.StorageDriver == StorageDriverPostgres && c.DBPort < 1 {
		return fmt.Errorf("config: DB_PORT must be a positive number")
	}
	if c.SpotCount < 1 {
		return fmt.Errorf("config: SPOT_COUNT must be positive, got %d", c.SpotCount)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET must not be empty")
	}
	if c.JWTSecret == DefaultJWTSecret && !c.IsDevelopment() {
		return fmt.Errorf("config: JWT_SECRET must be set outside %s", EnvDevelopment)
	}
	if c.JWTExpirationHours <= 0 {
		return fmt.Errorf("config: JWT_EXPIRATION_HOURS must be a positive number of hours")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
