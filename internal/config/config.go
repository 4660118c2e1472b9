package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	MongoDBURI        string `validate:"required"`
	MongoDBName       string `validate:"required"`
	ServerPort        string `validate:"required"`
	GarminBaseURL     string `validate:"required,url"`
	IdentityVerifyURL string `validate:"required,url"`
	RequestTimeout    time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	config := &Config{
		MongoDBURI:        os.Getenv("MONGODB_URI"),
		MongoDBName:       os.Getenv("MONGODB_NAME"),
		ServerPort:        os.Getenv("SERVER_PORT"),
		GarminBaseURL:     getenvDefault("GARMIN_BASE_URL", "https://connectapi.garmin.com"),
		IdentityVerifyURL: os.Getenv("IDENTITY_VERIFY_URL"),
	}

	timeout, err := time.ParseDuration(getenvDefault("REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid REQUEST_TIMEOUT")
	}
	config.RequestTimeout = timeout

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(err, "failed to validate config")
	}

	return config, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
