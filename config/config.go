// config/config.go
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Telegram struct {
		Token string
	}
	Admin struct {
		Password string
	}
	DB struct {
		Host         string
		Port         string
		User         string
		Password     string
		DBName       string
		SSLMode      string
		MaxOpenConns int
		MaxIdleConns int
		ConnLifetime time.Duration
	}
	Stadium struct {
		// Prices maps field name to the per-slot price in so'm.
		// The bookable field list is derived from its keys, sorted by name.
		Prices             map[string]int64
		OpenHour           int
		CloseHour          int
		CancelDeadlineHour int
	}
	Reminder struct {
		Lead      time.Duration
		Poll      time.Duration
		Tolerance time.Duration
	}
	Export struct {
		File string
	}
	Server struct {
		Port string
	}
	ShutdownTimeout time.Duration
}

// Fields returns the bookable field names in stable order.
func (c *Config) Fields() []string {
	fields := make([]string, 0, len(c.Stadium.Prices))
	for name := range c.Stadium.Prices {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// PriceOf returns the per-slot price for a field, 0 for unknown names.
func (c *Config) PriceOf(field string) int64 {
	return c.Stadium.Prices[field]
}

// Load loads the configuration
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("$HOME/.stadion-bot")

	setDefaults(v)

	// Enable environment variables to override config values
	v.AutomaticEnv()

	// Without a config file the defaults plus environment are enough
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Config file not found, using environment: %v\n", err)

		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("error unmarshaling config: %w", err)
		}
		applyEnv(cfg)
		return cfg, nil
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	applyEnv(&cfg)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ShutdownTimeout", 10*time.Second)
	v.SetDefault("Server.Port", "8080")

	v.SetDefault("DB.Host", "localhost")
	v.SetDefault("DB.Port", "5432")
	v.SetDefault("DB.User", "postgres")
	v.SetDefault("DB.Password", "postgres")
	v.SetDefault("DB.DBName", "stadion_bot")
	v.SetDefault("DB.SSLMode", "disable")
	v.SetDefault("DB.MaxOpenConns", 20)
	v.SetDefault("DB.MaxIdleConns", 10)
	v.SetDefault("DB.ConnLifetime", 5*time.Minute)

	v.SetDefault("Stadium.Prices", map[string]int64{
		"1-stadion": 270000,
		"2-stadion": 210000,
		"3-stadion": 170000,
	})
	v.SetDefault("Stadium.OpenHour", 7)
	v.SetDefault("Stadium.CloseHour", 24)
	v.SetDefault("Stadium.CancelDeadlineHour", 12)

	v.SetDefault("Reminder.Lead", 12*time.Hour)
	v.SetDefault("Reminder.Poll", 5*time.Minute)
	v.SetDefault("Reminder.Tolerance", 5*time.Minute)

	v.SetDefault("Export.File", "bookings.xlsx")
}

// applyEnv fills the secrets that are only ever provided via environment.
func applyEnv(cfg *Config) {
	if cfg.Telegram.Token == "" {
		cfg.Telegram.Token = os.Getenv("BOT_TOKEN")
	}
	if cfg.Admin.Password == "" {
		cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.DB.Password = pass
	}
}
