package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm/agent"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm/providers"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LLMConfig holds the model settings shared by both agents
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"`
	Model          string        `mapstructure:"model"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"maxTokens"`
	BaseURL        string        `mapstructure:"baseURL"`
	Region         string        `mapstructure:"region"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
}

// AgentConfig overrides the model settings for one agent
type AgentConfig struct {
	Model       string
	Temperature *float64
}

// Provider holds credentials for an LLM provider
type Provider struct {
	APIKey       string
	SecretKey    string
	SessionToken string

	// UseDefaultChain lets Bedrock resolve credentials from the AWS default
	// chain (shared profile, web identity, container or instance role)
	UseDefaultChain bool
}

// PromptsConfig points at an optional YAML prompt override file
type PromptsConfig struct {
	File string `mapstructure:"file"`
}

// OutputConfig defines where plans are saved
type OutputConfig struct {
	Directory string `mapstructure:"directory"`
}

// ServerConfig defines web API settings
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	SavePlans       bool          `mapstructure:"savePlans"`
	GenerateTimeout time.Duration `mapstructure:"generateTimeout"`
	AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
}

// LogConfig defines logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the main configuration structure for the application
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Prompts PromptsConfig `mapstructure:"prompts"`
	Output  OutputConfig  `mapstructure:"output"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Debug   bool          `mapstructure:"debug"`

	Agents    map[string]AgentConfig        `mapstructure:"-"`
	Providers map[llm.ProviderType]Provider `mapstructure:"-"`
}

// ConfigurationError reports a missing secret for the selected provider
type ConfigurationError struct {
	Provider llm.ProviderType
	Setting  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s API key not configured", providerDisplayName(e.Provider))
}

// Application constants
const (
	appName                = "buildpilot"
	defaultLogLevel        = "info"
	defaultPort            = 8000
	defaultGenerateTimeout = 10 * time.Minute
	defaultRequestTimeout  = 5 * time.Minute
)

// Environment variables holding provider secrets
var providerEnv = map[llm.ProviderType]string{
	llm.ProviderOpenAI:     "OPENAI_API_KEY",
	llm.ProviderAnthropic:  "ANTHROPIC_API_KEY",
	llm.ProviderGemini:     "GEMINI_API_KEY",
	llm.ProviderOpenRouter: "OPENROUTER_API_KEY",
	llm.ProviderBedrock:    "AWS_ACCESS_KEY_ID", // Special case for AWS
}

// Load reads .env, the config file and the environment. configFile overrides the search path.
func Load(configFile string, debug bool) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	configureViper(v, configFile)
	setDefaults(v, debug)

	cfg := &Config{}
	if err := readConfig(v, cfg, v.ReadInConfig()); err != nil {
		return nil, err
	}
	if debug {
		cfg.Debug = true
		cfg.Log.Level = "debug"
	}

	cfg.Agents = loadAgents(v)
	cfg.Providers = loadProviders(v)

	if _, err := cfg.ProviderFor(cfg.LLM.Model); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads KEY=VALUE pairs without overriding variables already set
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// configureViper sets up viper's configuration paths and environment variables
func configureViper(v *viper.Viper, configFile string) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(fmt.Sprintf(".%s", appName))
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
		v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	}
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults configures default values for configuration options
func setDefaults(v *viper.Viper, debug bool) {
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", agent.DefaultModelID)
	v.SetDefault("llm.temperature", agent.DefaultTemperature)
	v.SetDefault("llm.maxTokens", llm.DefaultMaxTokens)
	v.SetDefault("llm.baseURL", "")
	v.SetDefault("llm.region", "")
	v.SetDefault("llm.requestTimeout", defaultRequestTimeout)

	v.SetDefault("prompts.file", "")
	v.SetDefault("output.directory", ".")

	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.savePlans", false)
	v.SetDefault("server.generateTimeout", defaultGenerateTimeout)
	v.SetDefault("server.allowedOrigins", []string{"*"})

	if debug {
		v.SetDefault("debug", true)
		v.Set("log.level", "debug")
	} else {
		v.SetDefault("debug", false)
		v.SetDefault("log.level", defaultLogLevel)
	}
}

// readConfig reads configuration from file and environment
func readConfig(v *viper.Viper, cfg *Config, err error) error {
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}
	return nil
}

// loadAgents reads per-agent overrides; keys are looked up individually so env vars apply
func loadAgents(v *viper.Viper) map[string]AgentConfig {
	agents := make(map[string]AgentConfig, 2)
	for _, name := range []string{agent.PlannerName, agent.DocumenterName} {
		ac := AgentConfig{Model: v.GetString("agents." + name + ".model")}
		if key := "agents." + name + ".temperature"; v.IsSet(key) {
			t := v.GetFloat64(key)
			ac.Temperature = &t
		}
		agents[name] = ac
	}
	return agents
}

// loadProviders reads provider secrets from the config file, then the standard environment variables
func loadProviders(v *viper.Viper) map[llm.ProviderType]Provider {
	result := make(map[llm.ProviderType]Provider)
	for _, p := range llm.AllProviders {
		prov := Provider{APIKey: v.GetString("providers." + string(p) + ".apiKey")}
		if envVar, ok := providerEnv[p]; ok {
			if key := os.Getenv(envVar); key != "" {
				prov.APIKey = key
			}
		}
		if p == llm.ProviderBedrock {
			prov.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
			prov.SessionToken = os.Getenv("AWS_SESSION_TOKEN")
			prov.UseDefaultChain = v.GetBool("providers.bedrock.useDefaultChain") || awsDefaultChainConfigured()
		}
		if prov.APIKey != "" || prov.UseDefaultChain {
			result[p] = prov
		}
	}
	return result
}

// ProviderFor resolves the provider used for a model
func (c *Config) ProviderFor(modelID string) (llm.ProviderType, error) {
	return providers.DetermineProviderType(llm.ApiHandlerOptions{
		Provider: llm.ProviderType(c.LLM.Provider),
		ModelID:  modelID,
	})
}

// AgentOverrides converts per-agent config into profile overrides
func (c *Config) AgentOverrides() map[string]agent.Override {
	overrides := make(map[string]agent.Override, len(c.Agents))
	for name, ac := range c.Agents {
		overrides[name] = agent.Override{Model: ac.Model, Temperature: ac.Temperature}
	}
	return overrides
}

// HandlerOptions builds the provider options for one agent profile
func (c *Config) HandlerOptions(p agent.Profile) (llm.ApiHandlerOptions, error) {
	providerType, err := c.ProviderFor(p.ModelID)
	if err != nil {
		return llm.ApiHandlerOptions{}, err
	}

	creds := c.Providers[providerType]
	opts := llm.ApiHandlerOptions{
		Provider:         providerType,
		APIKey:           creds.APIKey,
		ModelID:          p.ModelID,
		BaseURL:          c.LLM.BaseURL,
		MaxTokens:        c.LLM.MaxTokens,
		RequestTimeoutMs: int(c.LLM.RequestTimeout / time.Millisecond),
		AWSRegion:        c.LLM.Region,
	}
	if providerType == llm.ProviderBedrock {
		opts.AWSAccessKey = creds.APIKey
		opts.AWSSecretKey = creds.SecretKey
		opts.AWSSessionToken = creds.SessionToken
		opts.APIKey = ""
	}
	return opts, nil
}

// CheckCredentials verifies a secret exists for every provider the agents will use.
// It runs before any generation so a missing key never reaches the backend.
func (c *Config) CheckCredentials(profiles agent.Profiles) error {
	for _, p := range profiles.All() {
		providerType, err := c.ProviderFor(p.ModelID)
		if err != nil {
			return err
		}
		if providerType == llm.ProviderOllama {
			continue
		}
		creds, ok := c.Providers[providerType]
		if providerType == llm.ProviderBedrock && creds.APIKey == "" && creds.UseDefaultChain {
			continue
		}
		if !ok || creds.APIKey == "" {
			return &ConfigurationError{Provider: providerType, Setting: providerEnv[providerType]}
		}
		if providerType == llm.ProviderBedrock && creds.SecretKey == "" {
			return &ConfigurationError{Provider: providerType, Setting: "AWS_SECRET_ACCESS_KEY"}
		}
	}
	return nil
}

// awsDefaultChainConfigured reports whether the environment points the AWS SDK
// at a non-static credential source. Instance roles cannot be detected without
// a network call; set providers.bedrock.useDefaultChain for those.
func awsDefaultChainConfigured() bool {
	for _, key := range []string{
		"AWS_PROFILE",
		"AWS_WEB_IDENTITY_TOKEN_FILE",
		"AWS_CONTAINER_CREDENTIALS_RELATIVE_URI",
		"AWS_CONTAINER_CREDENTIALS_FULL_URI",
	} {
		if os.Getenv(key) != "" {
			return true
		}
	}

	credentialsFile := os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	if credentialsFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return false
		}
		credentialsFile = filepath.Join(home, ".aws", "credentials")
	}
	_, err := os.Stat(credentialsFile)
	return err == nil
}

func providerDisplayName(p llm.ProviderType) string {
	switch p {
	case llm.ProviderOpenAI:
		return "OpenAI"
	case llm.ProviderAnthropic:
		return "Anthropic"
	case llm.ProviderGemini:
		return "Gemini"
	case llm.ProviderOpenRouter:
		return "OpenRouter"
	case llm.ProviderBedrock:
		return "AWS Bedrock"
	default:
		return string(p)
	}
}
