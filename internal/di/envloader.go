package di

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env files into the process environment. A missing file is
// not fatal; the process environment is used as is.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("Warning: .env file not found. Relying on environment variables.")
	}
}
