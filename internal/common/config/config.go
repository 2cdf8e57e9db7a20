// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	HTTP      HTTPConfig              `mapstructure:"http"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Provider  ProviderConfig          `mapstructure:"provider"`
	RateLimit RateLimitConfig         `mapstructure:"rate_limit"`
	Pipeline  PipelineConfig          `mapstructure:"pipeline"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Registry  RegistryConfig          `mapstructure:"registry"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Address        string   `mapstructure:"address"`
	ReadTimeout    int      `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"`   // milliseconds
	RequestTimeout int      `mapstructure:"request_timeout"` // milliseconds
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// Provider kinds.
const (
	ProviderGemini    = "gemini"
	ProviderWebSearch = "web_search"
	ProviderFixture   = "fixture"
)

// ProviderConfig selects and configures the external search provider.
type ProviderConfig struct {
	Kind      string          `mapstructure:"kind"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	WebSearch WebSearchConfig `mapstructure:"web_search"`
	// FixturePath points at a JSON array of fragments, used by kind "fixture".
	FixturePath string `mapstructure:"fixture_path"`
}

type GeminiConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type WebSearchConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	EngineID   string `mapstructure:"engine_id"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxResults int    `mapstructure:"max_results"`
}

// RateLimitConfig bounds provider calls per window across all replicas.
type RateLimitConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Requests  int    `mapstructure:"requests"`
	Window    int    `mapstructure:"window"` // milliseconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type PipelineConfig struct {
	// RoomSeed seeds the room-count filler. Zero means seed from the clock.
	RoomSeed int64 `mapstructure:"room_seed"`
	Journal  bool  `mapstructure:"journal"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
