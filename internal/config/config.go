package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/models"
)

type Config struct {
	DB_HOST        string
	DB_PORT        string
	DB_USER        string
	DB_PASSWORD    string
	DB_NAME        string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	JWT_SECRET     string
	REFRESH_SECRET string
	KAFKA_ADDRESS  string
	REDIS_URL      string
	UPLOAD_DIR     string
	LOG_LEVEL      string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:        os.Getenv("DB_HOST"),
		DB_PORT:        os.Getenv("DB_PORT"),
		DB_USER:        os.Getenv("DB_USER"),
		DB_PASSWORD:    os.Getenv("DB_PASSWORD"),
		DB_NAME:        os.Getenv("DB_NAME"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		REFRESH_SECRET: os.Getenv("REFRESH_SECRET"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		REDIS_URL:      os.Getenv("REDIS_URL"),
		UPLOAD_DIR:     os.Getenv("UPLOAD_DIR"),
		LOG_LEVEL:      os.Getenv("LOG_LEVEL"),
	}

	if config.UPLOAD_DIR == "" {
		config.UPLOAD_DIR = "uploads"
	}

	if config.JWT_SECRET == "" {
		return nil, fmt.Errorf("missing required env JWT_SECRET")
	}
	if config.REFRESH_SECRET == "" {
		return nil, fmt.Errorf("missing required env REFRESH_SECRET")
	}

	return config, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Product{},
		&models.Service{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Notification{},
	)
}

func InitDB() (*gorm.DB, error) {
	configuration, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(configuration.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration: %w", err)
	}
	return db, nil
}
