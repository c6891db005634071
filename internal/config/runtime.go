package config

import (
	"github.com/spf13/viper"
)

// RuntimeConfig holds the settings a CLI entry point binds from
// environment variables (and an optional .env file): input paths,
// logging, and the Kafka brokers events publish to.
type RuntimeConfig struct {
	VehiclesPath        string   `mapstructure:"VEHICLES_PATH"`
	BookingsPath        string   `mapstructure:"BOOKINGS_PATH"`
	InstantBookingsPath string   `mapstructure:"INSTANT_BOOKINGS_PATH"`
	LogPath             string   `mapstructure:"LOG_PATH"`
	LogLevel            string   `mapstructure:"LOG_LEVEL"`
	Environment         string   `mapstructure:"ENVIRONMENT"`
	KafkaBrokers        []string `mapstructure:"KAFKA_BROKERS"`
}

// LoadRuntimeConfig reads configuration from environment variables
// and an optional .env file in the working directory, falling back to
// compiled-in defaults for anything unset.
func LoadRuntimeConfig() (*RuntimeConfig, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("VEHICLES_PATH", "vehicles.json")
	viper.SetDefault("BOOKINGS_PATH", "bookings.json")
	viper.SetDefault("INSTANT_BOOKINGS_PATH", "instant_bookings.json")
	viper.SetDefault("LOG_PATH", "log.txt")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("KAFKA_BROKERS", []string{})

	_ = viper.ReadInConfig()

	cfg := &RuntimeConfig{
		VehiclesPath:        viper.GetString("VEHICLES_PATH"),
		BookingsPath:        viper.GetString("BOOKINGS_PATH"),
		InstantBookingsPath: viper.GetString("INSTANT_BOOKINGS_PATH"),
		LogPath:             viper.GetString("LOG_PATH"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		Environment:         viper.GetString("ENVIRONMENT"),
		KafkaBrokers:        viper.GetStringSlice("KAFKA_BROKERS"),
	}

	return cfg, nil
}
