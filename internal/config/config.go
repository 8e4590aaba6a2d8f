package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Module provides the application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
)

type Config struct {
	Environment string `mapstructure:"environment"`
	ServiceName string `mapstructure:"service_name"`

	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Address          string `mapstructure:"address"`
	RateLimitPerMin  int    `mapstructure:"rate_limit_per_min"`
	EnableCronRoutes bool   `mapstructure:"enable_cron_routes"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type TracingConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	ExporterEndpoint string  `mapstructure:"exporter_endpoint"`
	ExporterProtocol string  `mapstructure:"exporter_protocol"`
	SamplingRatio    float64 `mapstructure:"sampling_ratio"`
}

type SchedulerConfig struct {
	Enabled                bool `mapstructure:"enabled"`
	IntervalMinutes        int  `mapstructure:"interval_minutes"`
	BatchSize              int  `mapstructure:"batch_size"`
	ExpiryReminderDays     int  `mapstructure:"expiry_reminder_days"`
	ReminderSuppressionHrs int  `mapstructure:"reminder_suppression_hours"`
}

// Load reads configuration from config.yaml (optional) and environment
// variables prefixed with GYMLEDGER_.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("gymledger")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("service_name", "gymledger")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.rate_limit_per_min", 120)
	v.SetDefault("server.enable_cron_routes", true)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gymledger")
	v.SetDefault("database.password", "gymledger")
	v.SetDefault("database.name", "gymledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter_protocol", "grpc")
	v.SetDefault("tracing.sampling_ratio", 1.0)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval_minutes", 60)
	v.SetDefault("scheduler.batch_size", 200)
	v.SetDefault("scheduler.expiry_reminder_days", 7)
	v.SetDefault("scheduler.reminder_suppression_hours", 24)
}

// IsProduction reports whether the app runs in production mode.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
