package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	DB       DBConfig       `yaml:"db" mapstructure:"db"`
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	District DistrictConfig `yaml:"district" mapstructure:"district"`
	Session  SessionConfig  `yaml:"session" mapstructure:"session"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB    int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DBConfig configures the SQLite layer cache.
type DBConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DataConfig names the boundary layers and the CSV columns.
type DataConfig struct {
	Boundaries     string        `yaml:"boundaries" mapstructure:"boundaries"`
	Stations       string        `yaml:"stations" mapstructure:"stations"`
	CacheTTL       time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	BoundaryKey    string        `yaml:"boundary_key" mapstructure:"boundary_key"`
	KeyColumn      string        `yaml:"key_column" mapstructure:"key_column"`
	NameColumn     string        `yaml:"name_column" mapstructure:"name_column"`
	YearColumn     string        `yaml:"year_column" mapstructure:"year_column"`
	CountColumn    string        `yaml:"count_column" mapstructure:"count_column"`
	DistrictColumn string        `yaml:"district_column" mapstructure:"district_column"`
	Years          []int         `yaml:"years" mapstructure:"years"`
}

// DistrictConfig configures district numbering and colours.
type DistrictConfig struct {
	Max     int      `yaml:"max" mapstructure:"max"`
	Default int      `yaml:"default" mapstructure:"default"`
	Palette []string `yaml:"palette" mapstructure:"palette"`
}

// SessionConfig configures in-memory session expiry.
type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl" mapstructure:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// ExportConfig configures the CSV download.
type ExportConfig struct {
	Filename string `yaml:"filename" mapstructure:"filename"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISTRICTMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("db.path", "data/district-map.db")
	v.SetDefault("data.boundaries", "data/neighbourhoods.geojson")
	v.SetDefault("data.stations", "data/fire_stations.geojson")
	v.SetDefault("data.cache_ttl", "24h")
	v.SetDefault("data.boundary_key", "NEIGHBOURHOOD_NUMBER")
	v.SetDefault("data.key_column", "NEIGHBOURHOOD_NUMBER")
	v.SetDefault("data.name_column", "NEIGHBOURHOOD_NAME")
	v.SetDefault("data.year_column", "year")
	v.SetDefault("data.count_column", "EventCount")
	v.SetDefault("data.district_column", "District")
	v.SetDefault("data.years", []int{})
	v.SetDefault("district.max", 6)
	v.SetDefault("district.default", 1)
	v.SetDefault("district.palette", []string{"#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#FF00FF", "#00FFFF"})
	v.SetDefault("session.idle_ttl", "2h")
	v.SetDefault("session.sweep_interval", "10m")
	v.SetDefault("export.filename", "updated_neighbourhoods.csv")

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values the server cannot run without.
func (c *Config) Validate() error {
	if c.District.Max < 1 {
		return eris.Errorf("config: district.max must be at least 1, got %d", c.District.Max)
	}
	if c.District.Default < 1 || c.District.Default > c.District.Max {
		return eris.Errorf("config: district.default %d is outside 1..%d", c.District.Default, c.District.Max)
	}
	if c.Data.Boundaries == "" {
		return eris.New("config: data.boundaries is required")
	}
	if c.Data.KeyColumn == "" {
		return eris.New("config: data.key_column is required")
	}
	if c.Session.IdleTTL <= 0 {
		return eris.Errorf("config: session.idle_ttl must be positive, got %s", c.Session.IdleTTL)
	}
	if c.Session.SweepInterval <= 0 {
		return eris.Errorf("config: session.sweep_interval must be positive, got %s", c.Session.SweepInterval)
	}
	return nil
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
