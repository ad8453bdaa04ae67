package sqlboiler

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/friendsofgo/errors"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/field"
)

// Driver options read by Factory.CreateDriver.
const (
	// OptionTable names the table to query with TableQueries.
	OptionTable = "table"

	// OptionExecutor overrides the factory's boil.ContextExecutor.
	OptionExecutor = "executor"

	// OptionQuery and OptionCount supply a QueryFunc[T] and CountFunc
	// directly, typically wrapping generated models.
	OptionQuery = "query"
	OptionCount = "count"
)

// Factory creates SQLBoiler drivers for rows of type T.
type Factory[T any] struct {
	exec boil.ContextExecutor
	opts []Option
}

// NewFactory creates a factory. exec may be nil when every data source
// supplies its own executor or query functions.
func NewFactory[T any](exec boil.ContextExecutor, opts ...Option) *Factory[T] {
	return &Factory[T]{exec: exec, opts: opts}
}

func (f *Factory[T]) DriverType() string { return DriverType }

// CreateDriver builds a driver from either OptionQuery and OptionCount, or
// OptionTable with an executor.
func (f *Factory[T]) CreateDriver(options datasource.Options) (datasource.Driver, error) {
	if q, ok := options[OptionQuery]; ok {
		query, ok := asQueryFunc[T](q)
		if !ok {
			return nil, optionErr("%q must be a QueryFunc, got %T", OptionQuery, q)
		}
		count, ok := asCountFunc(options[OptionCount])
		if !ok {
			return nil, optionErr("%q must be a CountFunc, got %T", OptionCount, options[OptionCount])
		}
		return New(query, count, f.opts...), nil
	}

	table := options.String(OptionTable, "")
	if table == "" {
		return nil, optionErr("missing %q or %q option", OptionTable, OptionQuery)
	}

	exec := f.exec
	if e, ok := options[OptionExecutor]; ok {
		if exec, ok = e.(boil.ContextExecutor); !ok {
			return nil, optionErr("%q must be a boil.ContextExecutor, got %T", OptionExecutor, e)
		}
	}
	if exec == nil {
		return nil, optionErr("no executor for table %q", table)
	}

	c := newConfig(f.opts)
	query, count := TableQueries[T](exec, table, c.dialect)
	return New(query, count, f.opts...), nil
}

func asQueryFunc[T any](v any) (QueryFunc[T], bool) {
	switch fn := v.(type) {
	case QueryFunc[T]:
		return fn, fn != nil
	case func(ctx context.Context, mods ...qm.QueryMod) ([]T, error):
		return fn, fn != nil
	}
	return nil, false
}

func asCountFunc(v any) (CountFunc, bool) {
	switch fn := v.(type) {
	case CountFunc:
		return fn, fn != nil
	case func(ctx context.Context, mods ...qm.QueryMod) (int64, error):
		return fn, fn != nil
	}
	return nil, false
}

func optionErr(format string, args ...any) error {
	return &datasource.ConfigurationError{
		Subject: "driver",
		Name:    DriverType,
		Err:     errors.Wrapf(datasource.ErrInvalidOption, format, args...),
	}
}

// CoreExtension contributes the core field types to SQLBoiler drivers.
type CoreExtension struct {
	types []datasource.FieldType
}

// NewCoreExtension configures the core field types with opts.
func NewCoreExtension(opts ...field.Option) *CoreExtension {
	return &CoreExtension{types: field.Core(opts...)}
}

func (e *CoreExtension) ExtendedDriverTypes() []string      { return []string{DriverType} }
func (e *CoreExtension) FieldTypes() []datasource.FieldType { return e.types }
