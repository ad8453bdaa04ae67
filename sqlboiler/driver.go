// Package sqlboiler provides the SQL data source driver built on SQLBoiler
// query mods.
//
// The driver is generic over the row type and strategy-agnostic about where
// rows come from: it turns a datasource.Query into query mods and hands them
// to a QueryFunc and a CountFunc. Those usually wrap SQLBoiler-generated
// models, or TableQueries for plain tables.
//
// Example usage:
//
//	driver := sqlboiler.New(
//	    func(ctx context.Context, mods ...qm.QueryMod) ([]*models.News, error) {
//	        return models.News(mods...).All(ctx, db)
//	    },
//	    func(ctx context.Context, mods ...qm.QueryMod) (int64, error) {
//	        return models.News(mods...).Count(ctx, db)
//	    },
//	    sqlboiler.WithExtensions(sqlboiler.NewCoreExtension()),
//	)
//	ds, _ := datasource.New("news", driver)
package sqlboiler

import (
	"context"
	"time"

	"github.com/aarondl/sqlboiler/v4/queries/qm"

	"github.com/nrfta/datasource-go"
)

// DriverType is the registration name of the SQLBoiler driver.
const DriverType = "sqlboiler"

// QueryFunc executes a SQLBoiler query and returns results.
//
// Type parameter T is the SQLBoiler model type (e.g., *models.News).
type QueryFunc[T any] func(ctx context.Context, mods ...qm.QueryMod) ([]T, error)

// CountFunc executes a SQLBoiler count query.
type CountFunc func(ctx context.Context, mods ...qm.QueryMod) (int64, error)

// Driver implements datasource.Driver for SQLBoiler queries.
type Driver[T any] struct {
	datasource.FieldTypes

	queryFunc QueryFunc[T]
	countFunc CountFunc
	dialect   Dialect
}

type config struct {
	dialect    Dialect
	extensions []datasource.DriverExtension
}

// Option configures a Driver or a Factory.
type Option func(*config)

// WithDialect sets identifier quoting and argument formatting.
func WithDialect(d Dialect) Option {
	return func(c *config) { c.dialect = d }
}

// WithExtensions adds driver extensions contributing field types.
func WithExtensions(exts ...datasource.DriverExtension) Option {
	return func(c *config) { c.extensions = append(c.extensions, exts...) }
}

func newConfig(opts []Option) config {
	c := config{dialect: DefaultDialect}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// New creates a SQLBoiler driver.
//
// Parameters:
//   - queryFunc: executes queries with the given query mods
//   - countFunc: counts the rows matching the given WHERE mods
func New[T any](queryFunc QueryFunc[T], countFunc CountFunc, opts ...Option) *Driver[T] {
	c := newConfig(opts)
	return &Driver[T]{
		FieldTypes: datasource.LoadFieldTypes(DriverType, c.extensions...),
		queryFunc:  queryFunc,
		countFunc:  countFunc,
		dialect:    c.dialect,
	}
}

func (d *Driver[T]) Type() string { return DriverType }

// Execute counts the rows matching the conditions, then fetches the
// requested page. The page query is skipped when nothing matches.
func (d *Driver[T]) Execute(ctx context.Context, q datasource.Query) (datasource.Result, error) {
	start := time.Now()

	where, err := ConditionsToQueryMods(q.Conditions, d.dialect)
	if err != nil {
		return nil, datasource.NewDriverError(DriverType, err)
	}

	total, err := d.countFunc(ctx, where...)
	if err != nil {
		return nil, datasource.NewDriverError(DriverType, err)
	}

	var items []T
	if total > 0 {
		mods := append(where[:len(where):len(where)], OffsetToQueryMods(q, d.dialect)...)
		if items, err = d.queryFunc(ctx, mods...); err != nil {
			return nil, datasource.NewDriverError(DriverType, err)
		}
	}

	return &datasource.Page[T]{
		Nodes: items,
		Total: total,
		Meta: datasource.Metadata{
			Driver:        DriverType,
			QueryTimeMs:   time.Since(start).Milliseconds(),
			ItemsExamined: len(items),
		},
	}, nil
}
