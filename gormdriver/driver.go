// Package gormdriver provides the GORM data source driver.
//
// Conditions become GORM clause expressions, so identifier quoting and
// placeholders follow the dialector in use:
//
//	db, _ := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	driver := gormdriver.New[models.News](db, gormdriver.WithExtensions(gormdriver.NewCoreExtension()))
//	ds, _ := datasource.New("news", driver)
//
// Results hold []*T.
package gormdriver

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/offset"
)

// DriverType is the registration name of the GORM driver.
const DriverType = "gorm"

// Driver implements datasource.Driver over a *gorm.DB for model type T.
type Driver[T any] struct {
	datasource.FieldTypes

	db         *gorm.DB
	table      string
	nullsFirst bool
}

type config struct {
	table      string
	nullsFirst bool
	extensions []datasource.DriverExtension
}

// Option configures a Driver or a Factory.
type Option func(*config)

// WithTable queries the named table instead of the model's table.
func WithTable(table string) Option {
	return func(c *config) { c.table = table }
}

// WithNullsFirst spells out NULLS FIRST for ascending and NULLS LAST for
// descending orderings. Use it with databases that put NULLs last by default,
// such as PostgreSQL.
func WithNullsFirst() Option {
	return func(c *config) { c.nullsFirst = true }
}

// WithExtensions adds driver extensions contributing field types.
func WithExtensions(exts ...datasource.DriverExtension) Option {
	return func(c *config) { c.extensions = append(c.extensions, exts...) }
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// New creates a GORM driver for model type T.
func New[T any](db *gorm.DB, opts ...Option) *Driver[T] {
	c := newConfig(opts)
	return &Driver[T]{
		FieldTypes: datasource.LoadFieldTypes(DriverType, c.extensions...),
		db:         db,
		table:      c.table,
		nullsFirst: c.nullsFirst,
	}
}

func (d *Driver[T]) Type() string { return DriverType }

// Execute counts the matching rows, then loads the requested page.
func (d *Driver[T]) Execute(ctx context.Context, q datasource.Query) (datasource.Result, error) {
	start := time.Now()

	where, err := whereClause(q.Conditions)
	if err != nil {
		return nil, datasource.NewDriverError(DriverType, err)
	}

	base := d.db.WithContext(ctx).Model(new(T))
	if d.table != "" {
		base = base.Table(d.table)
	}
	if len(where.Exprs) > 0 {
		base = base.Clauses(where)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, datasource.NewDriverError(DriverType, err)
	}

	var items []*T
	if total > 0 {
		tx := base
		if d.nullsFirst && len(q.Orderings) > 0 {
			tx = tx.Order(orderByNullsFirst(q.Orderings))
		} else {
			for _, o := range orderBy(q.Orderings) {
				tx = tx.Order(o)
			}
		}
		p := offset.FromOffset(q.Offset, q.Limit)
		if p.Offset > 0 {
			tx = tx.Offset(p.Offset)
		}
		if !p.Unlimited() {
			tx = tx.Limit(p.Limit)
		}
		if err := tx.Find(&items).Error; err != nil {
			return nil, datasource.NewDriverError(DriverType, err)
		}
	}

	return &datasource.Page[*T]{
		Nodes: items,
		Total: total,
		Meta: datasource.Metadata{
			Driver:        DriverType,
			QueryTimeMs:   time.Since(start).Milliseconds(),
			ItemsExamined: len(items),
		},
	}, nil
}
