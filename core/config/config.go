package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gridsync/core/database"
	"gridsync/core/logger"
	"gridsync/core/server"
	"gridsync/core/sheets"
	"gridsync/core/storage"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// FileName is the optional config file looked up next to the .env file.
const FileName = "gridsync.toml"

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Sheets holds configuration for the spreadsheet and the table layout.
	Sheets sheets.Config `mapstructure:"sheets"`
	// Storage holds configuration for the snapshot archive (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig loads configuration from environment variables, the .env file and gridsync.toml.
// Environment variables take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// 2. Optional config file
	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("toml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
		}
	}

	// Map environment variables to nested keys (e.g. SHEETS_SPREADSHEET_ID -> sheets.spreadsheet_id)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Defaults returns the configuration built from struct tag defaults only.
func Defaults() (*Config, error) {
	v := viper.New()
	bindValues(v, Config{}, "")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Template renders cfg as a gridsync.toml document.
func Template(cfg *Config) ([]byte, error) {
	return toml.Marshal(settings(reflect.ValueOf(*cfg)))
}

// WriteTemplate writes the default configuration to path. Existing files are kept unless force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	cfg, err := Defaults()
	if err != nil {
		return err
	}
	data, err := Template(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}

// settings converts a config struct into nested maps keyed by mapstructure tags.
func settings(val reflect.Value) map[string]any {
	out := make(map[string]any)
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		field := val.Field(i)
		if field.Kind() == reflect.Struct {
			out[tag] = settings(field)
			continue
		}
		out[tag] = field.Interface()
	}
	return out
}
