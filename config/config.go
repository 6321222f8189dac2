package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// TTL returns the configured session lifetime, defaulting to 24 hours.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.TTLHours) * time.Hour
}

type StatsConfig struct {
	RefreshHours int `mapstructure:"refresh_hours"`
}

// RefreshInterval returns how often the statistics snapshot job runs.
// The storefront recomputes monthly figures daily by default.
func (s StatsConfig) RefreshInterval() time.Duration {
	if s.RefreshHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.RefreshHours) * time.Hour
}

type UploadConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Preset   string `mapstructure:"preset"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
