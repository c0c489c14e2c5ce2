package config

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/rabbit/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearTestEnvVars blanks every variable the loader reads. Viper treats empty
// values as unset.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RABBIT_LOG_LEVEL", "RABBIT_LOG_FORMAT",
		"RABBIT_DATABASE_PATH", "RABBIT_DATABASE_BOOTSTRAP_DIR", "DATABASE_PATH",
		"RABBIT_STATEMENT_DESCRIPTION_COLUMN", "RABBIT_STATEMENT_AMOUNT_COLUMN", "RABBIT_STATEMENT_SIGN_CONVENTION",
		"RABBIT_CLASSIFIER_PROVIDER", "RABBIT_CLASSIFIER_MODEL", "RABBIT_CLASSIFIER_API_KEY",
		"RABBIT_CLASSIFIER_REQUESTS_PER_MINUTE", "RABBIT_CLASSIFIER_TIMEOUT_SECONDS",
		"RABBIT_CLASSIFIER_SINGLE_USE_CATEGORY", "GEMINI_API_KEY",
		"RABBIT_SMTP_SERVER", "RABBIT_SMTP_PORT", "RABBIT_SMTP_USERNAME", "RABBIT_SMTP_PASSWORD",
		"SMTP_SERVER", "SMTP_PORT", "EMAIL_ADDRESS", "EMAIL_PASSWORD",
		"RABBIT_WORKER_CONCURRENCY", "RABBIT_WORKER_QUEUE_SIZE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "rabbit.db", config.Database.Path)
	assert.Equal(t, "profiles", config.Database.BootstrapDir)
	assert.Equal(t, "Description", config.Statement.DescriptionColumn)
	assert.Equal(t, "Debit", config.Statement.AmountColumn)
	assert.Equal(t, "auto", config.Statement.SignConvention)
	assert.Equal(t, ProviderGemini, config.Classifier.Provider)
	assert.Equal(t, "gemini-2.0-flash", config.Classifier.Model)
	assert.Equal(t, "", config.Classifier.APIKey)
	assert.Equal(t, 60, config.Classifier.RequestsPerMinute)
	assert.Equal(t, 30, config.Classifier.TimeoutSeconds)
	assert.Equal(t, "Rent", config.Classifier.SingleUseCategory)
	assert.Equal(t, 587, config.SMTP.Port)
	assert.False(t, config.SMTP.Complete())
	assert.Equal(t, 2, config.Worker.Concurrency)
	assert.Equal(t, 16, config.Worker.QueueSize)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)

	testEnvVars := map[string]string{
		"RABBIT_LOG_LEVEL":                      "debug",
		"RABBIT_LOG_FORMAT":                     "json",
		"RABBIT_STATEMENT_AMOUNT_COLUMN":        "Amount",
		"RABBIT_STATEMENT_SIGN_CONVENTION":      "negative",
		"RABBIT_CLASSIFIER_PROVIDER":            "genai",
		"RABBIT_CLASSIFIER_REQUESTS_PER_MINUTE": "15",
		"GEMINI_API_KEY":                        "test-api-key",
		"SMTP_SERVER":                           "smtp.example.com",
		"SMTP_PORT":                             "2525",
		"EMAIL_ADDRESS":                         "bot@example.com",
		"EMAIL_PASSWORD":                        "secret",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "Amount", config.Statement.AmountColumn)
	assert.Equal(t, "negative", config.Statement.SignConvention)
	assert.Equal(t, ProviderGenAI, config.Classifier.Provider)
	assert.Equal(t, 15, config.Classifier.RequestsPerMinute)
	assert.Equal(t, "test-api-key", config.Classifier.APIKey)
	assert.Equal(t, "smtp.example.com", config.SMTP.Server)
	assert.Equal(t, 2525, config.SMTP.Port)
	assert.Equal(t, "bot@example.com", config.SMTP.Username)
	assert.True(t, config.SMTP.Complete())
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)

	configContent := `
log:
  level: warn
database:
  path: /tmp/custom.db
statement:
  description_column: Memo
classifier:
  provider: none
  single_use_category: Housing
worker:
  concurrency: 4
`
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(wd, "config.yaml"), []byte(configContent), 0600))

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "/tmp/custom.db", config.Database.Path)
	assert.Equal(t, "Memo", config.Statement.DescriptionColumn)
	assert.Equal(t, "Debit", config.Statement.AmountColumn)
	assert.Equal(t, ProviderNone, config.Classifier.Provider)
	assert.Equal(t, "Housing", config.Classifier.SingleUseCategory)
	assert.Equal(t, 4, config.Worker.Concurrency)
}

func TestLoad_ExplicitFile(t *testing.T) {
	clearTestEnvVars(t)

	path := filepath.Join(t.TempDir(), "rabbit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: json\n"), 0600))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", config.Log.Format)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(wd, "config.yaml"), []byte("log:\n  level: warn\n  format: json\n"), 0600))

	t.Setenv("RABBIT_LOG_LEVEL", "error")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level, "environment overrides config file")
	assert.Equal(t, "json", config.Log.Format, "config file overrides defaults")
}

func validConfig() *Config {
	return &Config{
		Log:        LogConfig{Level: "info", Format: "text"},
		Database:   DatabaseConfig{Path: "rabbit.db"},
		Statement:  StatementConfig{DescriptionColumn: "Description", AmountColumn: "Debit", SignConvention: "auto"},
		Classifier: ClassifierConfig{Provider: ProviderGemini, RequestsPerMinute: 60, TimeoutSeconds: 30},
		Worker:     WorkerConfig{Concurrency: 1, QueueSize: 1},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "empty sign convention means auto", mutate: func(c *Config) { c.Statement.SignConvention = "" }},
		{name: "unthrottled classifier", mutate: func(c *Config) { c.Classifier.RequestsPerMinute = 0 }},
		{name: "invalid log level", mutate: func(c *Config) { c.Log.Level = "loud" }, expectError: true},
		{name: "invalid log format", mutate: func(c *Config) { c.Log.Format = "xml" }, expectError: true},
		{name: "empty database path", mutate: func(c *Config) { c.Database.Path = "" }, expectError: true},
		{name: "blank amount column", mutate: func(c *Config) { c.Statement.AmountColumn = "  " }, expectError: true},
		{name: "invalid sign convention", mutate: func(c *Config) { c.Statement.SignConvention = "credit" }, expectError: true},
		{name: "invalid provider", mutate: func(c *Config) { c.Classifier.Provider = "openai" }, expectError: true},
		{name: "negative rate", mutate: func(c *Config) { c.Classifier.RequestsPerMinute = -1 }, expectError: true},
		{name: "timeout too large", mutate: func(c *Config) { c.Classifier.TimeoutSeconds = 301 }, expectError: true},
		{name: "no workers", mutate: func(c *Config) { c.Worker.Concurrency = 0 }, expectError: true},
		{name: "no queue", mutate: func(c *Config) { c.Worker.QueueSize = 0 }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := validateConfig(c)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(&Config{Log: LogConfig{Level: "debug", Format: "json"}})
	_, ok := logger.(*logging.LogrusAdapter)
	assert.True(t, ok)

	assert.NotNil(t, NewLogger(nil))
}

func TestLoadEnv_DoesNotOverrideEnvironment(t *testing.T) {
	clearTestEnvVars(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(wd, ".env"), []byte("RABBIT_LOG_LEVEL=debug\n"), 0600))
	t.Setenv("RABBIT_LOG_LEVEL", "warn")

	LoadEnv()

	assert.Equal(t, "warn", os.Getenv("RABBIT_LOG_LEVEL"))
}
