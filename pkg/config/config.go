package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"SensorStat/pkg/util"
)

// Sink names accepted under report.sinks.
const (
	SinkConsole    = "console"
	SinkKafka      = "kafka"
	SinkClickHouse = "clickhouse"
	SinkRedis      = "redis"
)

var validate = validator.New()

type Config struct {
	Environment string        `yaml:"environment" default:"local" validate:"required"`
	Log         LogConfig     `yaml:"log"`
	Ingest      IngestConfig  `yaml:"ingest"`
	Stats       StatsConfig   `yaml:"stats"`
	Files       []string      `yaml:"files" validate:"dive,required"`
	Report      ReportConfig  `yaml:"report"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Kafka       KafkaConfig   `yaml:"kafka"`
	ClickHouse  CHConfig      `yaml:"clickhouse"`
	Redis       RedisConfig   `yaml:"redis"`
}

type LogConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output     string `yaml:"output" default:"stderr" validate:"required"`
	TimeFormat string `yaml:"time_format"`
}

// IngestConfig holds the accepted raw domain of the value column.
type IngestConfig struct {
	MinVal           float64 `yaml:"min_val" default:"1"`
	MaxVal           float64 `yaml:"max_val" default:"99" validate:"gtfield=MinVal"`
	AnomalyThreshold float64 `yaml:"anomaly_threshold" default:"0.9" validate:"gte=0,lte=1"`
	MaxLineBytes     int     `yaml:"max_line_bytes" default:"4194304" validate:"gt=0"`
}

type StatsConfig struct {
	WindowSize          int  `yaml:"window_size" default:"100" validate:"gt=0"`
	ShrinkPartialWindow bool `yaml:"shrink_partial_window"`
}

type ReportConfig struct {
	Sinks   []string      `yaml:"sinks" default:"[\"console\"]" validate:"min=1,dive,oneof=console kafka clickhouse redis"`
	Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
}

type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"sensorstat.summaries"`
	RequiredAcks int           `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
	Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3" validate:"gt=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

type CHConfig struct {
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"9000"`
	Database     string        `yaml:"database" default:"sensorstat"`
	Table        string        `yaml:"table" default:"sensor_summaries"`
	User         string        `yaml:"user" default:"default"`
	Password     string        `yaml:"password"`
	UseHTTP      bool          `yaml:"use_http"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

type RedisConfig struct {
	Host     string        `yaml:"host" default:"localhost"`
	Port     int           `yaml:"port" default:"6379"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix" default:"sensorstat"`
	TTL      time.Duration `yaml:"ttl" default:"24h"`
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
// An empty path yields the defaults alone.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SENSORSTAT_FILES"); v != "" {
		c.Files = util.SplitList(v)
	}
	if v := os.Getenv("SENSORSTAT_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SENSORSTAT_WINDOW"); v != "" {
		c.Stats.WindowSize = util.ParseIntDefault(v, c.Stats.WindowSize)
	}
	if v := os.Getenv("SENSORSTAT_SHRINK_PARTIAL_WINDOW"); v != "" {
		c.Stats.ShrinkPartialWindow = util.ParseBoolDefault(v, c.Stats.ShrinkPartialWindow)
	}
	if v := os.Getenv("SENSORSTAT_MIN_VAL"); v != "" {
		c.Ingest.MinVal = util.ParseFloatDefault(v, c.Ingest.MinVal)
	}
	if v := os.Getenv("SENSORSTAT_MAX_VAL"); v != "" {
		c.Ingest.MaxVal = util.ParseFloatDefault(v, c.Ingest.MaxVal)
	}
	if v := os.Getenv("REPORT_SINKS"); v != "" {
		c.Report.Sinks = util.SplitList(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks struct tags, then the rules that span sections.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s failed '%s' (param %q)", verrs[0].Namespace(), verrs[0].Tag(), verrs[0].Param())
		}
		return err
	}
	if c.HasSink(SinkKafka) {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when the kafka sink is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when the kafka sink is enabled")
		}
	}
	if c.HasSink(SinkClickHouse) && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when the clickhouse sink is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		return fmt.Errorf("metrics.textfile is required when metrics are enabled")
	}
	return nil
}

// HasSink reports whether name is listed under report.sinks.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Report.Sinks {
		if s == name {
			return true
		}
	}
	return false
}
