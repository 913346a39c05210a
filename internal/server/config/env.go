package config

import (
	"github.com/dmitrijs2005/accounts/internal/flagx"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables onto config.
//
// When -env-file is given, that dotenv file is loaded first; variables
// already present in the process environment take precedence over the file.
// Variables that are not set leave the current field values untouched.
//
// Recognised variables: APP_ENV, HTTP_ADDRESS, GRPC_ADDRESS, DATABASE_DSN,
// SECRET_KEY, ACCESS_TOKEN_TTL, REFRESH_TOKEN_TTL, BCRYPT_COST,
// RUN_MIGRATIONS, CORS_ALLOWED_ORIGINS (comma separated).
func parseEnv(config *Config) {
	if file := flagx.EnvFileFlag(); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		panic(err)
	}
}
