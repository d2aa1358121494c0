package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is the optional dotenv file read before the process environment.
const DefaultPath = "./config/.env"

type HTTP struct {
	Port           string        `env:"PORT" env-default:"8080"`
	BodyLimitBytes int64         `env:"REQUEST_BODY_LIMIT_BYTES" env-default:"1048576"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"10s"`
}

type Postgres struct {
	URL         string `env:"DATABASE_URL" env-required:"true"`
	AutoMigrate bool   `env:"POSTGRES_AUTO_MIGRATE" env-default:"true"`
}

type Kafka struct {
	Brokers string `env:"KAFKA_BROKERS" env-default:""`
	GroupID string `env:"KAFKA_GROUP_ID" env-default:""`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR" env-default:""`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

func (r Redis) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

type JWT struct {
	Secret string        `env:"JWT_SECRET" env-default:"dev-secret"`
	TTL    time.Duration `env:"JWT_TTL" env-default:"1h"`
}

// Load fills cfg from DefaultPath when that file exists, otherwise from the environment.
func Load(cfg any) error {
	return LoadFrom(DefaultPath, cfg)
}

func LoadFrom(path string, cfg any) error {
	err := cleanenv.ReadConfig(path, cfg)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return cleanenv.ReadEnv(cfg)
}

func ValidatePort(key, v string) error {
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return nil
}

func SplitList(raw string) []string {
	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
