package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration adds yaml support for Go duration strings ("5s", "1h").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type ServerConfig struct {
	Port int `yaml:"port"`
}

type MySQLConfig struct {
	DSN             string   `yaml:"dsn"`
	MaxOpenConns    int      `yaml:"maxOpenConns"`
	MaxIdleConns    int      `yaml:"maxIdleConns"`
	ConnMaxLifetime Duration `yaml:"connMaxLifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers              []string `yaml:"brokers"`
	CacheInvalidateTopic string   `yaml:"cacheInvalidateTopic"`
	GroupID              string   `yaml:"groupId"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type TracingConfig struct {
	Enabled          bool    `yaml:"enabled"`
	OTLPGrpcEndpoint string  `yaml:"otlpGrpcEndpoint"`
	Insecure         bool    `yaml:"insecure"`
	SampleRate       float64 `yaml:"sampleRate"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type ObservabilityLogging struct {
	RequestIDHeader string `yaml:"requestIdHeader"`
}

type ObservabilityConfig struct {
	ServiceName string               `yaml:"serviceName"`
	Environment string               `yaml:"environment"`
	Logging     ObservabilityLogging `yaml:"logging"`
	Tracing     TracingConfig        `yaml:"tracing"`
	Metrics     MetricsConfig        `yaml:"metrics"`
}

// SearchConfig carries the ranking policy knobs. The radius constants and the
// quality-intent rating floor are product policy, not invariants, so they live
// in config rather than code.
type SearchConfig struct {
	Country          string              `yaml:"country"`
	Regions          map[string][]string `yaml:"regions"`
	QualityMinRating float64             `yaml:"qualityMinRating"`
	BroadRadiusKm    float64             `yaml:"broadRadiusKm"`
	SpecificRadiusKm float64             `yaml:"specificRadiusKm"`
	DefaultRadiusKm  float64             `yaml:"defaultRadiusKm"`
	NearbyRadiusKm   float64             `yaml:"nearbyRadiusKm"`
	StoreTimeout     Duration            `yaml:"storeTimeout"`
	ObfuscationKey   string              `yaml:"obfuscationKey"`
}

type PlacesConfig struct {
	Enabled bool     `yaml:"enabled"`
	APIKey  string   `yaml:"apiKey"`
	BaseURL string   `yaml:"baseUrl"`
	Timeout Duration `yaml:"timeout"`
}

type AppConfig struct {
	Search SearchConfig `yaml:"search"`
	Places PlacesConfig `yaml:"places"`
}

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	MySQL         MySQLConfig         `yaml:"mysql"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
	App           AppConfig           `yaml:"app"`
}

// Load reads and parses the yaml config file, applying defaults for
// optional sections.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// MustLoad panics when the config cannot be loaded. Used at process start.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8081
	}
	if cfg.MySQL.MaxOpenConns == 0 {
		cfg.MySQL.MaxOpenConns = 50
	}
	if cfg.MySQL.MaxIdleConns == 0 {
		cfg.MySQL.MaxIdleConns = 10
	}
	if cfg.MySQL.ConnMaxLifetime == 0 {
		cfg.MySQL.ConnMaxLifetime = Duration(time.Hour)
	}
	s := &cfg.App.Search
	if s.QualityMinRating == 0 {
		s.QualityMinRating = 4.0
	}
	if s.BroadRadiusKm == 0 {
		s.BroadRadiusKm = 2000
	}
	if s.SpecificRadiusKm == 0 {
		s.SpecificRadiusKm = 100
	}
	if s.DefaultRadiusKm == 0 {
		s.DefaultRadiusKm = 5
	}
	if s.NearbyRadiusKm == 0 {
		s.NearbyRadiusKm = 3
	}
	if s.StoreTimeout == 0 {
		s.StoreTimeout = Duration(5 * time.Second)
	}
	if s.ObfuscationKey == "" {
		s.ObfuscationKey = "bizdir-payload-key"
	}
	if cfg.App.Places.BaseURL == "" {
		cfg.App.Places.BaseURL = "https://maps.googleapis.com/maps/api"
	}
	if cfg.App.Places.Timeout == 0 {
		cfg.App.Places.Timeout = Duration(10 * time.Second)
	}
}
