// Package config loads data source settings from a file and the environment.
//
// Settings are read with viper from an optional YAML, JSON or TOML file, then
// overridden by DATASOURCE_* environment variables, e.g.
// DATASOURCE_MAX_RESULTS_CAP=200 or DATASOURCE_DATE_LAYOUTS="02/01/2006,2006.01.02".
//
//	cfg, err := config.Load("datasource.yaml")
//	factory, err := datasource.NewFactory(manager, nil, cfg.FactoryOptions()...)
//	ext := collection.NewCoreExtension(cfg.FieldOptions()...)
package config

import (
	"io"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/field"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "DATASOURCE"

// Config holds factory defaults and field type settings.
type Config struct {
	// DefaultMaxResults is the page size used when parameters carry none.
	// Zero means unlimited.
	DefaultMaxResults int `mapstructure:"default_max_results" validate:"gte=0"`

	// MaxResultsCap bounds the page size callers may bind. Zero disables the
	// cap.
	MaxResultsCap int `mapstructure:"max_results_cap" validate:"gte=0"`

	// Location is the IANA zone temporal strings without an offset are
	// parsed in.
	Location string `mapstructure:"location" validate:"required,timezone"`

	// Extra layouts tried before the defaults when parsing temporal values.
	DateLayouts     []string `mapstructure:"date_layouts" validate:"dive,required"`
	TimeLayouts     []string `mapstructure:"time_layouts" validate:"dive,required"`
	DateTimeLayouts []string `mapstructure:"datetime_layouts" validate:"dive,required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		c := sl.Current().Interface().(Config)
		if c.MaxResultsCap > 0 && c.DefaultMaxResults > c.MaxResultsCap {
			sl.ReportError(c.DefaultMaxResults, "DefaultMaxResults", "DefaultMaxResults", "ltecap", "")
		}
	}, Config{})
	return v
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("default_max_results", datasource.DefaultMaxResults)
	v.SetDefault("max_results_cap", datasource.DefaultMaxResultsCap)
	v.SetDefault("location", "UTC")
	v.SetDefault("date_layouts", []string{})
	v.SetDefault("time_layouts", []string{})
	v.SetDefault("datetime_layouts", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path, if path is not empty, and the
// environment. The result is validated.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}
	return decode(v)
}

// LoadReader reads configuration of the given format ("yaml", "json",
// "toml") from r, then applies the environment.
func LoadReader(r io.Reader, format string) (*Config, error) {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the configuration. Failures are *datasource.ConfigurationError
// wrapping datasource.ErrInvalidOption.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &datasource.ConfigurationError{
			Subject: "config",
			Name:    EnvPrefix,
			Err:     errors.Wrapf(datasource.ErrInvalidOption, "%v", err),
		}
	}
	return nil
}

// Pagination returns the pagination defaults.
func (c *Config) Pagination() *datasource.PaginationConfig {
	return &datasource.PaginationConfig{
		DefaultMaxResults: c.DefaultMaxResults,
		MaxResultsCap:     c.MaxResultsCap,
	}
}

// FactoryOptions returns options applying the pagination defaults to a
// datasource.Factory.
func (c *Config) FactoryOptions() []datasource.FactoryOption {
	return []datasource.FactoryOption{datasource.WithDefaultPagination(c.Pagination())}
}

// FieldOptions returns options for the core field types. An unknown location
// falls back to UTC; Validate rejects it beforehand.
func (c *Config) FieldOptions() []field.Option {
	opts := []field.Option{
		field.WithDateLayout(c.DateLayouts...),
		field.WithTimeLayout(c.TimeLayouts...),
		field.WithDateTimeLayout(c.DateTimeLayouts...),
	}
	if loc, err := time.LoadLocation(c.Location); err == nil {
		opts = append(opts, field.WithLocation(loc))
	}
	return opts
}
