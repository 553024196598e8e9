package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every configuration environment variable,
// e.g. ALEPHWEB_SERVER.PORT.
const EnvPrefix = "ALEPHWEB_"

type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      *DatabaseConfig      `koanf:"database"`
	Schema        SchemaConfig         `koanf:"schema"`
	Auth          AuthConfig           `koanf:"auth"`
	Telemetry     *TelemetryConfig     `koanf:"telemetry"`
	Archive       *ArchiveConfig       `koanf:"archive"`
	Cache         CacheConfig          `koanf:"cache"`
	UI            UIConfig             `koanf:"ui"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development staging production test"`
}

type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"gte=0"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// DatabaseConfig is optional; without it schemata come from files and the
// postgres sink is unavailable.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"gte=0"`
	RunMigrations   bool   `koanf:"run_migrations"`
}

// DSN returns the postgres connection URL.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type SchemaConfig struct {
	// Source is "file" (default) or "postgres".
	Source string `koanf:"source" validate:"omitempty,oneof=file postgres"`
	Dir    string `koanf:"dir"`
}

type AuthConfig struct {
	// Source is "static" (default) or "postgres".
	Source string `koanf:"source" validate:"omitempty,oneof=static postgres"`
	// Keys holds static api keys as "key=role_id[:name][:admin]".
	Keys []string `koanf:"keys"`
}

type CacheConfig struct {
	MaxAge int `koanf:"max_age" validate:"gte=0"`
}

type UIConfig struct {
	StaticDir string `koanf:"static_dir"`
	Title     string `koanf:"title"`
}

// listKeys are read from the environment as comma-separated lists.
var listKeys = map[string]bool{
	"telemetry.sinks":             true,
	"auth.keys":                   true,
	"server.cors_allowed_origins": true,
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadConfig loads the configuration from environment variables using koanf.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	mainConfig.applyDefaults()

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	mainConfig.Observability.ServiceName = "alephweb"
	mainConfig.Observability.Environment = mainConfig.Primary.Env
	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}
	if err := mainConfig.Telemetry.Validate(mainConfig); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}
	if mainConfig.Schema.Source == "postgres" && mainConfig.Database == nil {
		return nil, fmt.Errorf("schema source postgres requires database config")
	}
	if mainConfig.Auth.Source == "postgres" && mainConfig.Database == nil {
		return nil, fmt.Errorf("auth source postgres requires database config")
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	// pointer sections stay nil when no env var mentions them
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = DefaultObservabilityConfig().Logging.Level
	}
	if c.Telemetry == nil {
		c.Telemetry = DefaultTelemetryConfig()
	}
	c.Telemetry.fillDefaults()
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Schema.Source == "" {
		c.Schema.Source = "file"
	}
	if c.Schema.Dir == "" {
		c.Schema.Dir = "schema"
	}
	if c.Auth.Source == "" {
		c.Auth.Source = "static"
	}
	if c.Cache.MaxAge == 0 {
		c.Cache.MaxAge = 3600
	}
	if c.UI.StaticDir == "" {
		c.UI.StaticDir = "static"
	}
	if c.UI.Title == "" {
		c.UI.Title = "Aleph"
	}
	if c.Database != nil {
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
		if c.Database.MaxOpenConns == 0 {
			c.Database.MaxOpenConns = 10
		}
	}
}
