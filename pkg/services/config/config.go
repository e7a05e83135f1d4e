package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/services/cost"
	"github.com/de-tools/tco-atlas/pkg/services/matcher"
	"github.com/de-tools/tco-atlas/pkg/services/pricesync"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "TCO"

// CatalogProviders are the targets priced from an instance catalog.
var CatalogProviders = []string{domain.TargetAWS, domain.TargetAzure, domain.TargetGCP}

type Config struct {
	Server      ServerConfig             `mapstructure:"server"`
	Log         LogConfig                `mapstructure:"log"`
	Catalogs    map[string]CatalogConfig `mapstructure:"catalogs" validate:"dive,keys,oneof=aws azure gcp,endkeys"`
	Assumptions AssumptionsConfig        `mapstructure:"assumptions"`
	PriceSync   PriceSyncConfig          `mapstructure:"price_sync"`
	History     HistoryConfig            `mapstructure:"history"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
}

type CatalogConfig struct {
	// Path is a file path or s3://bucket/key. Empty uses the bundled catalog.
	Path           string  `mapstructure:"path"`
	FallbackPolicy string  `mapstructure:"fallback_policy" validate:"oneof=scale largest"`
	Preference     string  `mapstructure:"preference" validate:"oneof=simple priority"`
	StorageRate    float64 `mapstructure:"storage_rate" validate:"gte=0"`
	TransferRate   float64 `mapstructure:"transfer_rate" validate:"gte=0"`
	NetworkDivisor float64 `mapstructure:"network_divisor" validate:"gt=0"`
	BackupRate     float64 `mapstructure:"backup_rate" validate:"gte=0"`
}

type AssumptionsConfig struct {
	// Path of an ini profile with [onprem] and [kubernetes] sections. Empty keeps the defaults.
	Path string `mapstructure:"path"`
}

type PriceSyncConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Source     string `mapstructure:"source" validate:"oneof=public api"`
	Location   string `mapstructure:"location"`
	Hour       int    `mapstructure:"hour" validate:"gte=0,lte=23"`
	Minute     int    `mapstructure:"minute" validate:"gte=0,lte=59"`
	WriteBack  bool   `mapstructure:"write_back"`
	CachePath  string `mapstructure:"cache_path" validate:"required"`
	OffersURL  string `mapstructure:"offers_url" validate:"required,url"`
	AWSProfile string `mapstructure:"aws_profile"`
}

type HistoryConfig struct {
	// DBPath of the DuckDB file. Empty disables sync history.
	DBPath string `mapstructure:"db_path"`
}

func Default() Config {
	catalogs := make(map[string]CatalogConfig, len(CatalogProviders))
	for _, provider := range CatalogProviders {
		rates, _ := cost.DefaultUnitRates(provider)
		policy := matcher.DefaultConfig(provider)
		catalogs[provider] = CatalogConfig{
			FallbackPolicy: string(policy.Fallback),
			Preference:     string(policy.Preference),
			StorageRate:    rates.StoragePerGBMonth,
			TransferRate:   rates.TransferPerGB,
			NetworkDivisor: rates.NetworkDivisor,
			BackupRate:     rates.BackupPerGBMonth,
		}
	}

	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Log:      LogConfig{Level: "info"},
		Catalogs: catalogs,
		PriceSync: PriceSyncConfig{
			Source:    pricesync.SourcePublic,
			Location:  pricesync.DefaultRegion,
			Hour:      2,
			Minute:    0,
			WriteBack: true,
			CachePath: "cache/aws_prices.json",
			OffersURL: pricesync.DefaultOffersURL,
		},
	}
}

// Load reads the YAML file at path, when given, over the defaults. Every key
// can be overridden from the environment, e.g. TCO_SERVER_PORT or
// TCO_CATALOGS_AWS_PATH.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so that env overrides apply to keys absent from the file.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("log.level", d.Log.Level)

	for provider, c := range d.Catalogs {
		prefix := "catalogs." + provider + "."
		v.SetDefault(prefix+"path", c.Path)
		v.SetDefault(prefix+"fallback_policy", c.FallbackPolicy)
		v.SetDefault(prefix+"preference", c.Preference)
		v.SetDefault(prefix+"storage_rate", c.StorageRate)
		v.SetDefault(prefix+"transfer_rate", c.TransferRate)
		v.SetDefault(prefix+"network_divisor", c.NetworkDivisor)
		v.SetDefault(prefix+"backup_rate", c.BackupRate)
	}

	v.SetDefault("assumptions.path", d.Assumptions.Path)

	v.SetDefault("price_sync.enabled", d.PriceSync.Enabled)
	v.SetDefault("price_sync.source", d.PriceSync.Source)
	v.SetDefault("price_sync.location", d.PriceSync.Location)
	v.SetDefault("price_sync.hour", d.PriceSync.Hour)
	v.SetDefault("price_sync.minute", d.PriceSync.Minute)
	v.SetDefault("price_sync.write_back", d.PriceSync.WriteBack)
	v.SetDefault("price_sync.cache_path", d.PriceSync.CachePath)
	v.SetDefault("price_sync.offers_url", d.PriceSync.OffersURL)
	v.SetDefault("price_sync.aws_profile", d.PriceSync.AWSProfile)

	v.SetDefault("history.db_path", d.History.DBPath)
}

func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Map values are not reached by the struct walk above.
	for _, provider := range CatalogProviders {
		catalog, ok := c.Catalogs[provider]
		if !ok {
			return fmt.Errorf("invalid config: catalogs.%s is missing", provider)
		}
		if err := validate.Struct(catalog); err != nil {
			return fmt.Errorf("invalid config: catalogs.%s: %w", provider, err)
		}
	}

	if _, err := pricesync.ResolveLocation(c.PriceSync.Location); err != nil {
		return fmt.Errorf("invalid config: price_sync.location: %w", err)
	}
	if c.PriceSync.Enabled && c.Catalogs[domain.TargetAWS].Path == "" {
		return fmt.Errorf("invalid config: price_sync.enabled requires catalogs.aws.path")
	}
	return nil
}

// Addr returns the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (c CatalogConfig) Matcher() matcher.Config {
	return matcher.Config{
		Fallback:   matcher.FallbackPolicy(c.FallbackPolicy),
		Preference: matcher.Preference(c.Preference),
	}
}

func (c CatalogConfig) UnitRates() cost.UnitRates {
	return cost.UnitRates{
		StoragePerGBMonth: c.StorageRate,
		TransferPerGB:     c.TransferRate,
		NetworkDivisor:    c.NetworkDivisor,
		BackupPerGBMonth:  c.BackupRate,
	}
}
