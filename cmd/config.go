package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"dispatch/internal/adapters/out/redisnotify"
	"dispatch/internal/core/application/usecases/commands"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is read from the environment, optionally seeded by a .env file. Keys use the
// upper-case names in the mapstructure tags. Durations accept Go syntax such as "15m";
// schedules are six-field cron specs with seconds first.
//
// Example:
//
//	cfg, err := cmd.LoadConfig(".env")
//	if err != nil {
//	    log.Fatalf("Error loading config: %v", err)
//	}
//	db, err := gorm.Open(gorm_postgres.Open(cfg.DSN()), &gorm.Config{})
type Config struct {
	HTTPPort   string `mapstructure:"HTTP_PORT"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSslMode  string `mapstructure:"DB_SSLMODE"`

	// RedisAddr selects the notifier: empty means notifications are only logged.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisListKey  string        `mapstructure:"REDIS_LIST_KEY"`
	NotifyTimeout time.Duration `mapstructure:"NOTIFY_TIMEOUT"`

	SweepSchedule        string `mapstructure:"SWEEP_SCHEDULE"`
	PendingSchedule      string `mapstructure:"PENDING_SCHEDULE"`
	BiddingCloseSchedule string `mapstructure:"BIDDING_CLOSE_SCHEDULE"`
	JobBatchSize         int    `mapstructure:"JOB_BATCH_SIZE"`

	ResponseTimeout time.Duration `mapstructure:"RESPONSE_TIMEOUT"`
	MaxAttempts     int           `mapstructure:"MAX_ATTEMPTS"`
}

// defaults are the values used for every key missing from the environment.
func defaults() map[string]any {
	policy := commands.DefaultPolicy()
	return map[string]any{
		"HTTP_PORT":              "8082",
		"DB_HOST":                "localhost",
		"DB_PORT":                "5432",
		"DB_USER":                "postgres",
		"DB_PASSWORD":            "",
		"DB_NAME":                "dispatch",
		"DB_SSLMODE":             "disable",
		"REDIS_ADDR":             "",
		"REDIS_LIST_KEY":         redisnotify.DefaultListKey,
		"NOTIFY_TIMEOUT":         2 * time.Second,
		"SWEEP_SCHEDULE":         "0 * * * * *",
		"PENDING_SCHEDULE":       "*/30 * * * * *",
		"BIDDING_CLOSE_SCHEDULE": "*/30 * * * * *",
		"JOB_BATCH_SIZE":         100,
		"RESPONSE_TIMEOUT":       policy.ResponseTimeout,
		"MAX_ATTEMPTS":           policy.MaxAttempts,
	}
}

// LoadConfig reads envFile when it exists, then the process environment. Unset keys
// fall back to defaults.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []error
	if c.HTTPPort == "" {
		problems = append(problems, errors.New("HTTP_PORT is empty"))
	}
	if c.JobBatchSize < 1 {
		problems = append(problems, fmt.Errorf("JOB_BATCH_SIZE must be positive, got %d", c.JobBatchSize))
	}
	if c.ResponseTimeout <= 0 {
		problems = append(problems, fmt.Errorf("RESPONSE_TIMEOUT must be positive, got %s", c.ResponseTimeout))
	}
	if c.MaxAttempts < 1 {
		problems = append(problems, fmt.Errorf("MAX_ATTEMPTS must be positive, got %d", c.MaxAttempts))
	}
	return errors.Join(problems...)
}

// Policy returns the assignment limits for the command handlers.
func (c Config) Policy() commands.Policy {
	return commands.Policy{
		ResponseTimeout: c.ResponseTimeout,
		MaxAttempts:     c.MaxAttempts,
	}
}

// DSN builds a libpq keyword/value connection string for gorm_postgres.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
