package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"WORKER_INDEX", "GEMINI_API_KEY", "JOBS_API_URL", "GEMINI_MODEL", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				assert.Equal(t, "article-worker", cfg.App.Name)
				assert.Equal(t, "https://jobs.example.com/jobs_api.php", cfg.Queue.Endpoint)
				assert.Equal(t, 15*time.Second, cfg.Queue.FetchTimeout)
				assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
				assert.Equal(t, "2", cfg.Worker.Index)
				assert.Equal(t, 5, cfg.Worker.MaxRetries)
				assert.Equal(t, 4*time.Second, cfg.Worker.MinRequestInterval)
				assert.Equal(t, 0, cfg.Worker.MaxQuotaRetries)
				assert.Equal(t, 9090, cfg.Status.Port)
				assert.Equal(t, "article_events", cfg.RabbitMQ.Exchange.Name)

				// Keys not in the file keep their defaults
				assert.Equal(t, 10*time.Second, cfg.Worker.ErrorRetryDelay)
				assert.Equal(t, 60*time.Second, cfg.Gemini.QuotaRetryDelay)
				assert.Equal(t, 3, cfg.RabbitMQ.Publish.RetryAttempts)
			}
		})
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "0", cfg.Worker.Index)
	assert.Equal(t, 3, cfg.Worker.MaxRetries)
	assert.Equal(t, 8*time.Second, cfg.Worker.MinRequestInterval)
	assert.Equal(t, 30*time.Second, cfg.Queue.FetchTimeout)
	assert.Equal(t, 60*time.Second, cfg.Queue.SubmitTimeout)
	assert.Equal(t, 120*time.Second, cfg.Gemini.Timeout)
	assert.False(t, cfg.Status.Enabled)
	assert.False(t, cfg.RabbitMQ.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKER_INDEX", "4")
	t.Setenv("GEMINI_API_KEY", "key-a\nkey-b\n")
	t.Setenv("JOBS_API_URL", "https://queue.internal/jobs_api.php")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load("testdata/valid_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "4", cfg.Worker.Index)
	assert.Equal(t, "key-a\nkey-b\n", cfg.Gemini.APIKeys)
	assert.Equal(t, "https://queue.internal/jobs_api.php", cfg.Queue.Endpoint)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "defaults are valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:      "endpoint without scheme",
			modify:    func(c *Config) { c.Queue.Endpoint = "jobs.example.com/api" },
			wantErr:   true,
			errString: "invalid queue endpoint",
		},
		{
			name:      "zero fetch timeout",
			modify:    func(c *Config) { c.Queue.FetchTimeout = 0 },
			wantErr:   true,
			errString: "queue fetch_timeout must be greater than 0",
		},
		{
			name:      "empty model",
			modify:    func(c *Config) { c.Gemini.Model = "  " },
			wantErr:   true,
			errString: "gemini model is required",
		},
		{
			name:      "zero max retries",
			modify:    func(c *Config) { c.Worker.MaxRetries = 0 },
			wantErr:   true,
			errString: "worker max_retries must be greater than 0",
		},
		{
			name:      "negative quota wait",
			modify:    func(c *Config) { c.Worker.MaxQuotaWait = -time.Second },
			wantErr:   true,
			errString: "worker quota limits must not be negative",
		},
		{
			name: "unlimited quota retries",
			modify: func(c *Config) {
				c.Worker.MaxQuotaRetries = 0
				c.Worker.MaxQuotaWait = 0
			},
			wantErr: false,
		},
		{
			name: "status port ignored while disabled",
			modify: func(c *Config) {
				c.Status.Enabled = false
				c.Status.Port = 0
			},
			wantErr: false,
		},
		{
			name: "invalid status port - too high",
			modify: func(c *Config) {
				c.Status.Enabled = true
				c.Status.Port = 70000
			},
			wantErr:   true,
			errString: "invalid status port",
		},
		{
			name: "empty rabbitmq host",
			modify: func(c *Config) {
				c.RabbitMQ.Enabled = true
				c.RabbitMQ.Host = ""
			},
			wantErr:   true,
			errString: "rabbitmq host is required",
		},
		{
			name: "empty exchange name",
			modify: func(c *Config) {
				c.RabbitMQ.Enabled = true
				c.RabbitMQ.Exchange.Name = ""
			},
			wantErr:   true,
			errString: "rabbitmq exchange name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad_ValidateIntegration(t *testing.T) {
	t.Run("load and validate valid config", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load("testdata/valid_config.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.NoError(t, err)
	})

	t.Run("load config with invalid port", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load("testdata/invalid_port.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid status port")
	})

	t.Run("load config with invalid retries", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load("testdata/invalid_retries.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "worker max_retries must be greater than 0")
	})
}

func TestPortConstants(t *testing.T) {
	assert.Equal(t, 1, MinPort)
	assert.Equal(t, 65535, MaxPort)
}
