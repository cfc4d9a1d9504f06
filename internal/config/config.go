package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/cuongbtq/article-worker/internal/worker/domain"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `yaml:"app"`
	Logging  LoggingConfig  `yaml:"logging"`
	Queue    QueueConfig    `yaml:"queue"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Worker   WorkerConfig   `yaml:"worker"`
	Status   StatusConfig   `yaml:"status"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// QueueConfig holds the jobs API endpoint and its timeouts
type QueueConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	SubmitTimeout time.Duration `yaml:"submit_timeout"`
}

// GeminiConfig holds generation client settings. The key itself only comes from the environment.
type GeminiConfig struct {
	Model           string        `yaml:"model"`
	Timeout         time.Duration `yaml:"timeout"`
	QuotaRetryDelay time.Duration `yaml:"quota_retry_delay"`
	APIKeys         string        `yaml:"-"`
}

// WorkerConfig holds retry and pacing settings for the job loop
type WorkerConfig struct {
	Index              string        `yaml:"index"`
	MaxRetries         int           `yaml:"max_retries"`
	MinRequestInterval time.Duration `yaml:"min_request_interval"`
	ErrorRetryDelay    time.Duration `yaml:"error_retry_delay"`
	MaxQuotaRetries    int           `yaml:"max_quota_retries"`
	MaxQuotaWait       time.Duration `yaml:"max_quota_wait"`
	FetchRetries       int           `yaml:"fetch_retries"`
	FetchRetryDelay    time.Duration `yaml:"fetch_retry_delay"`
	MaxJobs            int           `yaml:"max_jobs"`
}

// StatusConfig holds the optional HTTP status server configuration
type StatusConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RabbitMQConfig holds the optional outcome event publisher configuration
type RabbitMQConfig struct {
	Enabled    bool             `yaml:"enabled"`
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	User       string           `yaml:"user"`
	Password   string           `yaml:"password"`
	VHost      string           `yaml:"vhost"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Connection ConnectionConfig `yaml:"connection"`
	Publish    PublishConfig    `yaml:"publish"`
}

// ExchangeConfig holds RabbitMQ exchange configuration
type ExchangeConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	Heartbeat         time.Duration `yaml:"heartbeat"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// PublishConfig holds RabbitMQ publish retry settings
type PublishConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// envOverrides are the variables a deployment sets per process.
// Empty values leave the file or default value in place.
type envOverrides struct {
	WorkerIndex string `env:"WORKER_INDEX"`
	APIKeys     string `env:"GEMINI_API_KEY"`
	JobsAPIURL  string `env:"JOBS_API_URL"`
	GeminiModel string `env:"GEMINI_MODEL"`
	LogLevel    string `env:"LOG_LEVEL"`
	LogFormat   string `env:"LOG_FORMAT"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:        "article-worker",
			Version:     "1.0.0",
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
		Queue: QueueConfig{
			Endpoint:      "http://localhost:8000/jobs_api.php",
			FetchTimeout:  30 * time.Second,
			SubmitTimeout: 60 * time.Second,
		},
		Gemini: GeminiConfig{
			Model:           "gemini-2.5-flash",
			Timeout:         120 * time.Second,
			QuotaRetryDelay: domain.DefaultQuotaRetryDelay,
		},
		Worker: WorkerConfig{
			Index:              "0",
			MaxRetries:         domain.DefaultMaxRetries,
			MinRequestInterval: domain.DefaultMinRequestInterval,
			ErrorRetryDelay:    domain.DefaultErrorRetryDelay,
			MaxQuotaRetries:    domain.DefaultMaxQuotaRetries,
			MaxQuotaWait:       domain.DefaultMaxQuotaWait,
			FetchRetries:       domain.DefaultFetchRetries,
			FetchRetryDelay:    domain.DefaultFetchRetryDelay,
		},
		Status: StatusConfig{
			Enabled:         false,
			Port:            8081,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		RabbitMQ: RabbitMQConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    5672,
			User:    "guest",
			VHost:   "/",
			Exchange: ExchangeConfig{
				Name:    "article_events",
				Type:    "topic",
				Durable: true,
			},
			Connection: ConnectionConfig{
				RetryAttempts:     5,
				RetryInterval:     2 * time.Second,
				Heartbeat:         10 * time.Second,
				ConnectionTimeout: 30 * time.Second,
			},
			Publish: PublishConfig{
				RetryAttempts:     3,
				RetryInterval:     500 * time.Millisecond,
				BackoffMultiplier: 2,
			},
		},
	}
}

// Load reads the configuration file on top of the defaults and applies
// environment overrides. An empty path skips the file.
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if overrides.WorkerIndex != "" {
		c.Worker.Index = overrides.WorkerIndex
	}
	if overrides.JobsAPIURL != "" {
		c.Queue.Endpoint = overrides.JobsAPIURL
	}
	if overrides.GeminiModel != "" {
		c.Gemini.Model = overrides.GeminiModel
	}
	if overrides.LogLevel != "" {
		c.Logging.Level = overrides.LogLevel
	}
	if overrides.LogFormat != "" {
		c.Logging.Format = overrides.LogFormat
	}
	c.Gemini.APIKeys = overrides.APIKeys

	return nil
}

// Validate checks if the configuration is valid.
// The key pool and worker index are checked separately by the credentials package.
func (c *Config) Validate() error {
	endpoint, err := url.Parse(c.Queue.Endpoint)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return fmt.Errorf("invalid queue endpoint: %q", c.Queue.Endpoint)
	}

	if c.Queue.FetchTimeout <= 0 {
		return fmt.Errorf("queue fetch_timeout must be greater than 0")
	}

	if c.Queue.SubmitTimeout <= 0 {
		return fmt.Errorf("queue submit_timeout must be greater than 0")
	}

	if strings.TrimSpace(c.Gemini.Model) == "" {
		return fmt.Errorf("gemini model is required")
	}

	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("gemini timeout must be greater than 0")
	}

	if c.Worker.MaxRetries <= 0 {
		return fmt.Errorf("worker max_retries must be greater than 0")
	}

	if c.Worker.MinRequestInterval < 0 {
		return fmt.Errorf("worker min_request_interval must not be negative")
	}

	if c.Worker.ErrorRetryDelay < 0 {
		return fmt.Errorf("worker error_retry_delay must not be negative")
	}

	if c.Worker.MaxQuotaRetries < 0 || c.Worker.MaxQuotaWait < 0 {
		return fmt.Errorf("worker quota limits must not be negative (0 means unlimited)")
	}

	if c.Worker.FetchRetries < 0 {
		return fmt.Errorf("worker fetch_retries must not be negative")
	}

	if c.Worker.MaxJobs < 0 {
		return fmt.Errorf("worker max_jobs must not be negative")
	}

	if c.Status.Enabled && (c.Status.Port < MinPort || c.Status.Port > MaxPort) {
		return fmt.Errorf("invalid status port: %d (must be between %d and %d)", c.Status.Port, MinPort, MaxPort)
	}

	if c.RabbitMQ.Enabled {
		if c.RabbitMQ.Host == "" {
			return fmt.Errorf("rabbitmq host is required")
		}

		if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
			return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
		}

		if c.RabbitMQ.Exchange.Name == "" {
			return fmt.Errorf("rabbitmq exchange name is required")
		}
	}

	return nil
}
