package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Ledger   LedgerConfig
	Tracing  TracingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// DSN renders the connection URL pgx expects.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}

	return u.String()
}

// KafkaConfig is optional: without brokers the command server and the alert
// producer are not started.
type KafkaConfig struct {
	Brokers      []string
	GroupID      string
	CommandTopic string
	ReplyTopic   string
	AlertTopic   string
	Consumers    int
}

type TracingConfig struct {
	ServiceName string
	// Endpoint is an OTLP/HTTP collector address; empty disables export.
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

type LedgerConfig struct {
	LowStockThreshold int64
	StatsTTL          time.Duration
	IdempotencyTTL    time.Duration
	OperationLockTTL  time.Duration
	AlertLevelTTL     time.Duration
	// RateLimit is the number of transitions one client IP may issue per
	// RateWindow. Zero disables throttling.
	RateLimit  int
	RateWindow time.Duration
}

// New loads the given env files (".env" when none are given; a missing file
// is not an error) and reads the configuration from the environment.
func New(envFiles ...string) (*Config, error) {
	const op = "config.New"

	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else {
		for _, f := range envFiles {
			if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("%s: load %s: %w", op, f, err)
			}
		}
	}

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: stringEnv("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	postgresPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresMaxConns, err := intEnv("POSTGRES_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresMinConns, err := intEnv("POSTGRES_MIN_CONNS", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     stringEnv("POSTGRES_HOST", "localhost"),
		Port:     postgresPort,
		SSLMode:  stringEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns: int32(postgresMaxConns),
		MinConns: int32(postgresMinConns),
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisPoolSize, err := intEnv("REDIS_POOL_SIZE", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     stringEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
		PoolSize: redisPoolSize,
	}

	consumers, err := intEnv("KAFKA_CONSUMERS", 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if consumers < 1 {
		return nil, fmt.Errorf("%s: KAFKA_CONSUMERS must be positive, got %d", op, consumers)
	}

	kafkaCfg := KafkaConfig{
		Brokers:      listEnv("KAFKA_BROKERS"),
		GroupID:      stringEnv("KAFKA_GROUP_ID", "inventory-service"),
		CommandTopic: stringEnv("KAFKA_COMMAND_TOPIC", "inventory.commands"),
		ReplyTopic:   stringEnv("KAFKA_REPLY_TOPIC", "inventory.replies"),
		AlertTopic:   stringEnv("KAFKA_ALERT_TOPIC", "inventory.alerts"),
		Consumers:    consumers,
	}

	ledgerCfg, err := ledger()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tracingCfg, err := tracing()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Kafka:    kafkaCfg,
		Ledger:   ledgerCfg,
		Tracing:  tracingCfg,
	}, nil
}

func tracing() (TracingConfig, error) {
	insecure, err := boolEnv("OTEL_EXPORTER_OTLP_INSECURE", true)
	if err != nil {
		return TracingConfig{}, err
	}

	ratio := 1.0
	if s := os.Getenv("OTEL_SAMPLE_RATIO"); s != "" {
		ratio, err = strconv.ParseFloat(s, 64)
		if err != nil || ratio < 0 || ratio > 1 {
			return TracingConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATIO %q: want a number in [0, 1]", s)
		}
	}

	return TracingConfig{
		ServiceName: stringEnv("OTEL_SERVICE_NAME", "tix-inventory"),
		Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Insecure:    insecure,
		SampleRatio: ratio,
	}, nil
}

func ledger() (LedgerConfig, error) {
	threshold, err := intEnv("LOW_STOCK_THRESHOLD", 10)
	if err != nil {
		return LedgerConfig{}, err
	}

	if threshold < 0 {
		return LedgerConfig{}, fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative, got %d", threshold)
	}

	statsTTL, err := durationEnv("STATS_CACHE_TTL", 5*time.Second)
	if err != nil {
		return LedgerConfig{}, err
	}

	idemTTL, err := durationEnv("IDEMPOTENCY_TTL", 2*time.Hour)
	if err != nil {
		return LedgerConfig{}, err
	}

	lockTTL, err := durationEnv("OPERATION_LOCK_TTL", 30*time.Second)
	if err != nil {
		return LedgerConfig{}, err
	}

	alertTTL, err := durationEnv("ALERT_LEVEL_TTL", 24*time.Hour)
	if err != nil {
		return LedgerConfig{}, err
	}

	rateLimit, err := intEnv("RATE_LIMIT", 20)
	if err != nil {
		return LedgerConfig{}, err
	}

	rateWindow, err := durationEnv("RATE_WINDOW", time.Minute)
	if err != nil {
		return LedgerConfig{}, err
	}

	return LedgerConfig{
		LowStockThreshold: int64(threshold),
		StatsTTL:          statsTTL,
		IdempotencyTTL:    idemTTL,
		OperationLockTTL:  lockTTL,
		AlertLevelTTL:     alertTTL,
		RateLimit:         rateLimit,
		RateWindow:        rateWindow,
	}, nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

// listEnv splits a comma separated variable, dropping empty items.
func listEnv(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
