package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type LedgerConfig struct {
	Env          string `yaml:"env" env:"LEDGER_ENV" env-default:"local"`
	GRPCServer   `yaml:"grpc_server"`
	HTTPServer   `yaml:"http_server"`
	LedgerDB     `yaml:"ledger_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka_service"`
	Auth         `yaml:"auth"`
	Ledger       `yaml:"ledger"`
	Pool         `yaml:"pool"`
	Snapshot     `yaml:"snapshot"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50061"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8081"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
}

type LedgerDB struct {
	Dsn            string `yaml:"dsn" env:"LEDGER_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"LEDGER_MIGRATIONS_PATH" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Host    string `yaml:"host" env:"KAFKA_HOST"`
	Port    string `yaml:"port" env:"KAFKA_PORT" env-default:"9092"`
	Topic   string `yaml:"topic" env:"KAFKA_TOPIC" env-default:"ledger-events"`
	Enabled bool   `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"true"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"LEDGER_JWT_SECRET"`
	Issuer    string        `yaml:"issuer" env-default:"credit-ledger"`
	TokenTTL  time.Duration `yaml:"token_ttl" env-default:"24h"`
}

type Ledger struct {
	Admin                     string `yaml:"admin" env:"LEDGER_ADMIN"`
	Vault                     string `yaml:"vault" env:"LEDGER_VAULT"`
	ApprovalThreshold         uint32 `yaml:"approval_threshold" env-default:"2"`
	MaxLeverage               uint32 `yaml:"max_leverage" env-default:"10"`
	MaxInterestRateBps        uint32 `yaml:"max_interest_rate_bps" env-default:"10000"`
	LenderAPRBps              uint32 `yaml:"lender_apr_bps" env-default:"500"`
	TermsPolicy               string `yaml:"terms_policy" env-default:"fixed_at_request"`
	ReleasePolicy             string `yaml:"release_policy" env-default:"anyone"`
	RequireVerifiedCollateral bool   `yaml:"require_verified_collateral"`
}

type Pool struct {
	DefaultLock time.Duration `yaml:"default_lock" env-default:"720h"`
}

type Snapshot struct {
	Schedule string `yaml:"schedule" env:"LEDGER_SNAPSHOT_SCHEDULE" env-default:"@every 10m"`
}

func MustLoad() *LedgerConfig {
	cfg, err := Load(os.Getenv("LEDGER_CONFIG_PATH"))
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

func Load(configPath string) (*LedgerConfig, error) {
	if configPath == "" {
		return nil, errConfigPathMissing
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, wrap("failed to find config file", err)
	}

	// YAML to struct object
	var cfg LedgerConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, wrap("failed to read config file", err)
	}

	return &cfg, nil
}
