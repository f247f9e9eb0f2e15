package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pregcare/riskd/internal/domain/valueobject"
	pkgkafka "github.com/pregcare/riskd/pkg/kafka"
	"github.com/pregcare/riskd/pkg/observability"
)

// Config holds all configuration for the risk service.
type Config struct {
	HTTPPort    string `yaml:"http_port"`
	GRPCPort    string `yaml:"grpc_port"`
	Environment string `yaml:"environment"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`

	ModelPath     string `yaml:"model_path"`
	DecisionMode  string `yaml:"decision_mode"`
	ThresholdPath string `yaml:"threshold_path"`
	Threshold     string `yaml:"threshold"`
	HighRiskClass string `yaml:"high_risk_class"`
	NoRiskLabel   string `yaml:"no_risk_label"`

	PredictionCacheSize int `yaml:"prediction_cache_size"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitRPS       int      `yaml:"rate_limit_rps"`

	KafkaBrokers       []string `yaml:"kafka_brokers"`
	KafkaVerdictTopic  string   `yaml:"kafka_verdict_topic"`
	KafkaRequestTopic  string   `yaml:"kafka_request_topic"`
	KafkaConsumerGroup string   `yaml:"kafka_consumer_group"`
	KafkaTLS           bool     `yaml:"kafka_tls"`
	KafkaSASLEnabled   bool     `yaml:"kafka_sasl_enabled"`
	KafkaSASLMechanism string   `yaml:"kafka_sasl_mechanism"`
	KafkaSASLUsername  string   `yaml:"kafka_sasl_username"`
	KafkaSASLPassword  string   `yaml:"kafka_sasl_password"`

	PublishTimeout time.Duration `yaml:"publish_timeout"`

	OTLPEndpoint   string `yaml:"otel_exporter_otlp_endpoint"`
	TracingEnabled bool   `yaml:"tracing_enabled"`

	GRPCTLSCertFile string `yaml:"grpc_tls_cert_file"`
	GRPCTLSKeyFile  string `yaml:"grpc_tls_key_file"`
	GRPCReflection  bool   `yaml:"grpc_reflection"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		HTTPPort:            "4000",
		GRPCPort:            "8090",
		Environment:         "development",
		LogLevel:            "info",
		LogFormat:           "json",
		ModelPath:           "models/risk_model.json",
		DecisionMode:        valueobject.DecisionModeDirectLabel.String(),
		PredictionCacheSize: 0,
		CORSAllowedOrigins:  []string{"*"},
		KafkaVerdictTopic:   "risk.verdicts",
		KafkaConsumerGroup:  "riskd",
		OTLPEndpoint:        "localhost:4317",
		PublishTimeout:      2 * time.Second,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.GRPCPort = getEnv("GRPC_PORT", c.GRPCPort)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.ModelPath = getEnv("MODEL_PATH", c.ModelPath)
	c.DecisionMode = getEnv("DECISION_MODE", c.DecisionMode)
	c.ThresholdPath = getEnv("THRESHOLD_PATH", c.ThresholdPath)
	c.Threshold = getEnv("THRESHOLD", c.Threshold)
	c.HighRiskClass = getEnv("HIGH_RISK_CLASS", c.HighRiskClass)
	c.NoRiskLabel = getEnv("NO_RISK_LABEL", c.NoRiskLabel)
	c.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.KafkaBrokers = getEnvList("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaVerdictTopic = getEnv("KAFKA_VERDICT_TOPIC", c.KafkaVerdictTopic)
	c.KafkaRequestTopic = getEnv("KAFKA_REQUEST_TOPIC", c.KafkaRequestTopic)
	c.KafkaConsumerGroup = getEnv("KAFKA_CONSUMER_GROUP", c.KafkaConsumerGroup)
	c.KafkaSASLMechanism = getEnv("KAFKA_SASL_MECHANISM", c.KafkaSASLMechanism)
	c.KafkaSASLUsername = getEnv("KAFKA_SASL_USERNAME", c.KafkaSASLUsername)
	c.KafkaSASLPassword = getEnv("KAFKA_SASL_PASSWORD", c.KafkaSASLPassword)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.GRPCTLSCertFile = getEnv("GRPC_TLS_CERT_FILE", c.GRPCTLSCertFile)
	c.GRPCTLSKeyFile = getEnv("GRPC_TLS_KEY_FILE", c.GRPCTLSKeyFile)

	var errs []error
	var err error
	if c.PredictionCacheSize, err = getEnvInt("PREDICTION_CACHE_SIZE", c.PredictionCacheSize); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimitRPS, err = getEnvInt("RATE_LIMIT_RPS", c.RateLimitRPS); err != nil {
		errs = append(errs, err)
	}
	if c.PublishTimeout, err = getEnvDuration("PUBLISH_TIMEOUT", c.PublishTimeout); err != nil {
		return err
	}
	if c.KafkaTLS, err = getEnvBool("KAFKA_TLS", c.KafkaTLS); err != nil {
		errs = append(errs, err)
	}
	if c.KafkaSASLEnabled, err = getEnvBool("KAFKA_SASL_ENABLED", c.KafkaSASLEnabled); err != nil {
		errs = append(errs, err)
	}
	if c.TracingEnabled, err = getEnvBool("TRACING_ENABLED", c.TracingEnabled); err != nil {
		errs = append(errs, err)
	}
	if c.GRPCReflection, err = getEnvBool("GRPC_REFLECTION", c.GRPCReflection); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	var errs []error

	if c.ModelPath == "" {
		errs = append(errs, errors.New("MODEL_PATH is required"))
	}

	mode, err := c.Mode()
	if err != nil {
		errs = append(errs, err)
	} else if mode.UsesThreshold() && c.ThresholdPath == "" && c.Threshold == "" {
		errs = append(errs, errors.New("probability_threshold mode requires THRESHOLD_PATH or THRESHOLD"))
	}

	if c.PredictionCacheSize < 0 {
		errs = append(errs, fmt.Errorf("PREDICTION_CACHE_SIZE must not be negative, got %d", c.PredictionCacheSize))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %d", c.RateLimitRPS))
	}
	if c.PublishTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PUBLISH_TIMEOUT must be positive, got %s", c.PublishTimeout))
	}
	if (c.GRPCTLSCertFile == "") != (c.GRPCTLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	if c.KafkaRequestTopic != "" && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_REQUEST_TOPIC requires KAFKA_BROKERS"))
	}

	return errors.Join(errs...)
}

// Mode returns the configured decision mode.
func (c *Config) Mode() (valueobject.DecisionMode, error) {
	mode, err := valueobject.DecisionModeFromString(c.DecisionMode)
	if err != nil {
		return valueobject.DecisionMode{}, fmt.Errorf("DECISION_MODE: %w", err)
	}
	return mode, nil
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// LogConfig returns the logger settings.
func (c *Config) LogConfig() observability.LogConfig {
	return observability.LogConfig{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		File:   c.LogFile,
	}
}

// KafkaConfig returns the broker connection settings.
func (c *Config) KafkaConfig() pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:       c.KafkaBrokers,
		ConsumerGroup: c.KafkaConsumerGroup,
		TLS:           c.KafkaTLS,
		SASLEnabled:   c.KafkaSASLEnabled,
		SASLMechanism: c.KafkaSASLMechanism,
		SASLUsername:  c.KafkaSASLUsername,
		SASLPassword:  c.KafkaSASLPassword,
	}
}

// TLSEnabled reports whether the gRPC server should serve TLS.
func (c *Config) TLSEnabled() bool {
	return c.GRPCTLSCertFile != "" && c.GRPCTLSKeyFile != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: invalid boolean %q", key, value)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}
