package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBUrl        string
	Port         string
	JWTSecret    string
	HomeCurrency string
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, using defaults")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	homeCurrency := os.Getenv("HOME_CURRENCY")
	if homeCurrency == "" {
		homeCurrency = "NGN"
	}

	return Config{
		DBUrl:        os.Getenv("DB_URL"),
		Port:         port,
		JWTSecret:    os.Getenv("JWT_SECRET"),
		HomeCurrency: homeCurrency,
	}
}
