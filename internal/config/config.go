package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, sourced from the environment.
// MongoURI and RedisAddr are optional: without Mongo the service runs
// on the in-memory store, without Redis the code index fast path is
// skipped.
type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	MongoURI      string        `env:"MONGODB_URI"`
	MongoDatabase string        `env:"MONGO_DB" envDefault:"predictbattle"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"super-secret-key-change-in-production"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	CreateSecret  string        `env:"CREATE_SECRET" envDefault:"021"`
	CORSOrigins   string        `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	NameBlocklist []string      `env:"NAME_BLOCKLIST" envSeparator:"," envDefault:"admin,administrator,moderator,system,root"`
	Debug         bool          `env:"DEBUG" envDefault:"false"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
