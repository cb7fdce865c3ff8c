package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"StockPulse/pkg/util"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Logging struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		Output    string `yaml:"output"`
		Collector struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic"`
			Interval       time.Duration `yaml:"interval"`
			CountThreshold int           `yaml:"count_threshold"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Tracing struct {
		Enabled      bool    `yaml:"enabled"`
		Endpoint     string  `yaml:"endpoint"`
		ServiceName  string  `yaml:"service_name"`
		SamplingRate float64 `yaml:"sampling_rate"`
	} `yaml:"tracing"`
	// Backend selects how sales updates are applied: "direct" or "kafka".
	Backend struct {
		Type string `yaml:"type"`
	} `yaml:"backend"`
	Storage struct {
		Sales      string `yaml:"sales"`     // memory | clickhouse
		Inventory  string `yaml:"inventory"` // memory | postgres
		SampleData bool   `yaml:"sample_data"`
	} `yaml:"storage"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Postgres struct {
		URL      string `yaml:"url"`
		MaxConns int32  `yaml:"max_conns"`
		MinConns int32  `yaml:"min_conns"`
	} `yaml:"postgres"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Cache struct {
		MemorySize  int           `yaml:"memory_size"`
		MemoryTTL   time.Duration `yaml:"memory_ttl"`
		ForecastTTL time.Duration `yaml:"forecast_ttl"`
	} `yaml:"cache"`
	Warmup struct {
		Enabled  bool          `yaml:"enabled"`
		Interval time.Duration `yaml:"interval"`
		Queue    string        `yaml:"queue"`
		Workers  int           `yaml:"workers"`
		Model    string        `yaml:"model"`
	} `yaml:"warmup"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"ratelimit"`
	Forecast struct {
		Seed          int64 `yaml:"seed"` // 0 seeds from the clock
		ReportWorkers int   `yaml:"report_workers"`
	} `yaml:"forecast"`
}

// MaxSharedMemoryTTL bounds the memory layer TTL in front of Redis.
const MaxSharedMemoryTTL = 10 * time.Second

// Default returns a configuration that runs entirely in memory.
func Default() *Config {
	var c Config
	c.Environment = "development"
	c.Server.Port = 8080
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 15 * time.Second
	c.Server.CORSOrigins = []string{"*"}
	c.Logging.Level = "info"
	c.Logging.Format = "console"
	c.Logging.Output = "stdout"
	c.Logging.Collector.Topic = "stockpulse.logs"
	c.Logging.Collector.Interval = 30 * time.Second
	c.Logging.Collector.CountThreshold = 100
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Tracing.ServiceName = "stockpulse"
	c.Tracing.SamplingRate = 1.0
	c.Backend.Type = "direct"
	c.Storage.Sales = "memory"
	c.Storage.Inventory = "memory"
	c.Storage.SampleData = true
	c.Kafka.Topic = "stockpulse.sales"
	c.Kafka.RequiredAcks = -1
	c.Kafka.Compression = "snappy"
	c.Kafka.Consumer.GroupID = "stockpulse"
	c.Kafka.Consumer.Workers = 4
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "stockpulse"
	c.Postgres.MaxConns = 10
	c.Redis.Prefix = "stockpulse"
	c.Cache.MemorySize = 1000
	c.Cache.MemoryTTL = 5 * time.Second
	c.Cache.ForecastTTL = time.Hour
	c.Warmup.Interval = 15 * time.Minute
	c.Warmup.Queue = "forecast-warmup"
	c.Warmup.Workers = 2
	c.Warmup.Model = "linear"
	c.RateLimit.RPS = 50
	c.RateLimit.Burst = 100
	c.Forecast.ReportWorkers = 4
	return &c
}

// Load reads and parses a YAML configuration file on top of Default().
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads .env (if present) and the YAML file, then overrides with
// environment variables. A missing YAML file falls back to Default().
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var c *Config
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		c = Default()
	} else {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STOCKPULSE_ENV"); v != "" {
		c.Environment = v
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("STOCKPULSE_PORT"), c.Server.Port)
	c.Forecast.Seed = util.ParseInt64Default(os.Getenv("STOCKPULSE_SEED"), c.Forecast.Seed)
	if v := os.Getenv("STOCKPULSE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("STOCKPULSE_SALES_STORE"); v != "" {
		c.Storage.Sales = v
	}
	if v := os.Getenv("STOCKPULSE_INVENTORY_STORE"); v != "" {
		c.Storage.Inventory = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Tracing.Endpoint = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Backend.Type {
	case "direct":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when backend.type is 'kafka'")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when backend.type is 'kafka'")
		}
	default:
		return fmt.Errorf("backend.type must be 'direct' or 'kafka', got '%s'", c.Backend.Type)
	}
	switch c.Storage.Sales {
	case "memory":
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required when storage.sales is 'clickhouse'")
		}
	default:
		return fmt.Errorf("storage.sales must be 'memory' or 'clickhouse', got '%s'", c.Storage.Sales)
	}
	switch c.Storage.Inventory {
	case "memory":
	case "postgres":
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres.url is required when storage.inventory is 'postgres'")
		}
	default:
		return fmt.Errorf("storage.inventory must be 'memory' or 'postgres', got '%s'", c.Storage.Inventory)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	// Deletes reach only the local memory layer; other replicas keep their
	// copy until it expires.
	if c.Redis.Enabled && c.Cache.MemoryTTL > MaxSharedMemoryTTL {
		return fmt.Errorf("cache.memory_ttl must not exceed %s when redis is enabled, got %s", MaxSharedMemoryTTL, c.Cache.MemoryTTL)
	}
	if c.Logging.Collector.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("logging.collector requires kafka.brokers")
	}
	if c.Warmup.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("warmup requires redis")
	}
	return nil
}
