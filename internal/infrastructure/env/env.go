package env

import (
	"fmt"
	"os"

	"research-agent/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// EnvService reads settings from the process environment after loading
// .env and .env.<APP_ENV>. Missing files are fine.
type EnvService struct {
	AppEnv string
	Loaded []string
}

func NewEnvService() *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	svc := &EnvService{AppEnv: appEnv}

	if err := godotenv.Load(".env"); err == nil {
		svc.Loaded = append(svc.Loaded, ".env")
	}

	envFile := fmt.Sprintf(".env.%s", appEnv)
	if err := godotenv.Overload(envFile); err == nil {
		svc.Loaded = append(svc.Loaded, envFile)
	}

	return svc
}

func (e *EnvService) Get(key string) string {
	return os.Getenv(key)
}

func (e *EnvService) GetWithDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
