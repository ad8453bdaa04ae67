package gormdriver

import (
	"github.com/friendsofgo/errors"
	"gorm.io/gorm"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/field"
)

// Driver options read by Factory.CreateDriver.
const (
	// OptionDB overrides the factory's *gorm.DB.
	OptionDB = "db"

	// OptionTable queries the named table instead of the model's table.
	OptionTable = "table"
)

// Factory creates GORM drivers for model type T.
type Factory[T any] struct {
	db   *gorm.DB
	opts []Option
}

// NewFactory creates a factory. db may be nil when every data source supplies
// OptionDB.
func NewFactory[T any](db *gorm.DB, opts ...Option) *Factory[T] {
	return &Factory[T]{db: db, opts: opts}
}

func (f *Factory[T]) DriverType() string { return DriverType }

func (f *Factory[T]) CreateDriver(options datasource.Options) (datasource.Driver, error) {
	db := f.db
	if v, ok := options[OptionDB]; ok {
		if db, ok = v.(*gorm.DB); !ok {
			return nil, optionErr("%q must be a *gorm.DB, got %T", OptionDB, v)
		}
	}
	if db == nil {
		return nil, optionErr("missing %q option", OptionDB)
	}

	opts := f.opts
	if table := options.String(OptionTable, ""); table != "" {
		opts = append(opts[:len(opts):len(opts)], WithTable(table))
	}
	return New[T](db, opts...), nil
}

func optionErr(format string, args ...any) error {
	return &datasource.ConfigurationError{
		Subject: "driver",
		Name:    DriverType,
		Err:     errors.Wrapf(datasource.ErrInvalidOption, format, args...),
	}
}

// CoreExtension contributes the core field types to GORM drivers.
type CoreExtension struct {
	types []datasource.FieldType
}

// NewCoreExtension configures the core field types with opts.
func NewCoreExtension(opts ...field.Option) *CoreExtension {
	return &CoreExtension{types: field.Core(opts...)}
}

func (e *CoreExtension) ExtendedDriverTypes() []string      { return []string{DriverType} }
func (e *CoreExtension) FieldTypes() []datasource.FieldType { return e.types }
