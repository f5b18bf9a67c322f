package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
	// PublicOrigin prefixes join links when a client does not send its own.
	PublicOrigin string `mapstructure:"public_origin"`
}

type DatabaseConfig struct {
	// Enabled turns on the archive of finished games.
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // gorm | pq
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// DSN returns the libpq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.DBName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", "127.0.0.1:8081")
	v.SetDefault("server.metrics_address", ":9090")
	v.SetDefault("server.public_origin", "http://localhost:8080")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "gorm")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "ludo")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "ludo")

	v.SetDefault("log.development", false)
}

// LoadConfig reads config.yaml from path. The file is optional; every key
// has a default and can be overridden by LUDO_<SECTION>_<KEY> variables,
// e.g. LUDO_SERVER_HTTP_ADDRESS.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LUDO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.HTTPAddress == "" {
		return errors.New("server.http_address is required")
	}
	switch c.Database.Driver {
	case "gorm", "pq":
	default:
		return fmt.Errorf("database.driver %q: want gorm or pq", c.Database.Driver)
	}
	return nil
}
