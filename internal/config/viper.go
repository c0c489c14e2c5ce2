// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"fjacquet/rabbit/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Classifier providers
const (
	ProviderGemini = "gemini"
	ProviderGenAI  = "genai"
	ProviderNone   = "none"
)

// Config represents the complete application configuration
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Statement  StatementConfig  `mapstructure:"statement" yaml:"statement"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	SMTP       SMTPConfig       `mapstructure:"smtp" yaml:"smtp"`
	Worker     WorkerConfig     `mapstructure:"worker" yaml:"worker"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
	// BootstrapDir holds profiles/<name>/{categories,rules}.yaml imported into an empty database.
	BootstrapDir string `mapstructure:"bootstrap_dir" yaml:"bootstrap_dir"`
}

// StatementConfig describes the default statement layout. A profile run can
// override the columns on the command line.
type StatementConfig struct {
	DescriptionColumn string `mapstructure:"description_column" yaml:"description_column"`
	AmountColumn      string `mapstructure:"amount_column" yaml:"amount_column"`
	SignConvention    string `mapstructure:"sign_convention" yaml:"sign_convention"`
}

type ClassifierConfig struct {
	Provider          string `mapstructure:"provider" yaml:"provider"`
	Model             string `mapstructure:"model" yaml:"model"`
	APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	// SingleUseCategory is the rent-like category the model is told to use at most once.
	SingleUseCategory string `mapstructure:"single_use_category" yaml:"single_use_category"`
}

type SMTPConfig struct {
	Server   string `mapstructure:"server" yaml:"server"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"-"`
	Subject  string `mapstructure:"subject" yaml:"subject"`
}

// Complete reports whether every setting needed to send mail is present.
func (s SMTPConfig) Complete() bool {
	return s.Server != "" && s.Port > 0 && s.Username != "" && s.Password != ""
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	QueueSize   int `mapstructure:"queue_size" yaml:"queue_size"`
}

// InitializeConfig loads configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load initializes Viper configuration with hierarchical loading:
// defaults, then config file, then environment variables.
// An explicit configFile replaces the search path.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.rabbit")
		v.AddConfigPath(".rabbit")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("RABBIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. Secrets keep their conventional, unprefixed names
	for key, env := range map[string]string{
		"classifier.api_key": "GEMINI_API_KEY",
		"smtp.server":        "SMTP_SERVER",
		"smtp.port":          "SMTP_PORT",
		"smtp.username":      "EMAIL_ADDRESS",
		"smtp.password":      "EMAIL_PASSWORD",
		"database.path":      "DATABASE_PATH",
	} {
		if err := v.BindEnv(key, "RABBIT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.path", "rabbit.db")
	v.SetDefault("database.bootstrap_dir", "profiles")

	v.SetDefault("statement.description_column", models.DefaultDescriptionColumn)
	v.SetDefault("statement.amount_column", models.DefaultAmountColumn)
	v.SetDefault("statement.sign_convention", string(models.SignAuto))

	v.SetDefault("classifier.provider", ProviderGemini)
	v.SetDefault("classifier.model", "gemini-2.0-flash")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.requests_per_minute", 60)
	v.SetDefault("classifier.timeout_seconds", 30)
	v.SetDefault("classifier.single_use_category", "Rent")

	v.SetDefault("smtp.server", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.subject", "Your Categorized Transactions Report")

	v.SetDefault("worker.concurrency", 2)
	v.SetDefault("worker.queue_size", 16)
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	if strings.TrimSpace(config.Statement.DescriptionColumn) == "" || strings.TrimSpace(config.Statement.AmountColumn) == "" {
		return fmt.Errorf("statement.description_column and statement.amount_column must not be empty")
	}

	if _, ok := models.ParseSignConvention(config.Statement.SignConvention); !ok {
		return fmt.Errorf("invalid statement.sign_convention: %s (must be 'auto', 'negative' or 'positive')", config.Statement.SignConvention)
	}

	switch config.Classifier.Provider {
	case ProviderGemini, ProviderGenAI, ProviderNone:
	default:
		return fmt.Errorf("invalid classifier.provider: %s (must be '%s', '%s' or '%s')",
			config.Classifier.Provider, ProviderGemini, ProviderGenAI, ProviderNone)
	}

	if config.Classifier.RequestsPerMinute < 0 || config.Classifier.RequestsPerMinute > 1000 {
		return fmt.Errorf("classifier.requests_per_minute must be between 0 and 1000, got: %d", config.Classifier.RequestsPerMinute)
	}

	if config.Classifier.TimeoutSeconds < 1 || config.Classifier.TimeoutSeconds > 300 {
		return fmt.Errorf("classifier.timeout_seconds must be between 1 and 300, got: %d", config.Classifier.TimeoutSeconds)
	}

	if config.Worker.Concurrency < 1 {
		return fmt.Errorf("worker.concurrency must be at least 1, got: %d", config.Worker.Concurrency)
	}

	if config.Worker.QueueSize < 1 {
		return fmt.Errorf("worker.queue_size must be at least 1, got: %d", config.Worker.QueueSize)
	}

	return nil
}
