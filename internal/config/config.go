// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Artifacts   ArtifactsConfig   `yaml:"artifacts" mapstructure:"artifacts"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Predictions PredictionsConfig `yaml:"predictions" mapstructure:"predictions"`
	Train       TrainConfig       `yaml:"train" mapstructure:"train"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the prediction API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	StaticDir   string   `yaml:"static_dir" mapstructure:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// ArtifactsConfig locates the persisted scaler and model.
type ArtifactsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// StoreConfig configures the prediction history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PredictionsConfig configures the append-only prediction log.
type PredictionsConfig struct {
	CSVPath string `yaml:"csv_path" mapstructure:"csv_path"`
}

// TrainConfig configures the offline training pipeline.
type TrainConfig struct {
	Samples      int     `yaml:"samples" mapstructure:"samples"`
	Seed         uint64  `yaml:"seed" mapstructure:"seed"`
	Trees        int     `yaml:"trees" mapstructure:"trees"`
	MaxDepth     int     `yaml:"max_depth" mapstructure:"max_depth"`
	TestFraction float64 `yaml:"test_fraction" mapstructure:"test_fraction"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AQI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("artifacts.dir", "artifacts")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "aqi.db")
	v.SetDefault("predictions.csv_path", "aqi_prediction_log.csv")
	v.SetDefault("train.samples", 5000)
	v.SetDefault("train.seed", 42)
	v.SetDefault("train.trees", 100)
	v.SetDefault("train.max_depth", 15)
	v.SetDefault("train.test_fraction", 0.2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
