// Env loader
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string
	Port       string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSchema   string

	// Remote verse API
	BibleAPIURL         string
	BibleAPITranslation string

	// Feed engine tuning
	FeedBatchSize     int
	PrefetchThreshold int
}

// LoadConfig loads environment variables from the .env file
func LoadConfig() *Config {
	appEnv := os.Getenv("APP_ENV")

	switch appEnv {
	case "production":
		if err := godotenv.Load(".env.production"); err == nil {
			fmt.Println("Loaded .env.production")
		}
	default:
		if err := godotenv.Load(".env.development"); err == nil {
			fmt.Println("Loaded .env.development")
		}
	}

	cfg := &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		Port:       getEnv("PORT", "8080"),
		DBHost:     getEnv("BLUEPRINT_DB_HOST", "localhost"),
		DBPort:     getEnv("BLUEPRINT_DB_PORT", "5432"),
		DBName:     getEnv("BLUEPRINT_DB_DATABASE", "daily_bread"),
		DBUser:     getEnv("BLUEPRINT_DB_USERNAME", "postgres"),
		DBPassword: getEnv("BLUEPRINT_DB_PASSWORD", ""),
		DBSchema:   getEnv("BLUEPRINT_DB_SCHEMA", "public"),

		BibleAPIURL:         getEnv("BIBLE_API_URL", "https://bible-api.com"),
		BibleAPITranslation: getEnv("BIBLE_API_TRANSLATION", "web"),

		FeedBatchSize:     getEnvInt("FEED_BATCH_SIZE", 10),
		PrefetchThreshold: getEnvInt("PREFETCH_THRESHOLD", 5),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func GetAppEnv() string {
	if value, exists := os.LookupEnv("APP_ENV"); exists {
		return value
	}
	return "development"
}
