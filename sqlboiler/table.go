package sqlboiler

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/friendsofgo/errors"
)

// TableQueries builds query and count functions over a plain table, for when
// no generated model exists. Rows are bound into T with SQLBoiler's binding
// rules: boil struct tags, or column names in title case.
//
// Example:
//
//	query, count := sqlboiler.TableQueries[*News](db, "news", sqlboiler.PostgresDialect)
//	driver := sqlboiler.New(query, count)
func TableQueries[T any](exec boil.ContextExecutor, table string, d Dialect) (QueryFunc[T], CountFunc) {
	from := d.quote(table)

	newQuery := func(mods []qm.QueryMod) *queries.Query {
		q := &queries.Query{}
		queries.SetDialect(q, d.boil())
		qm.Apply(q, append(mods[:len(mods):len(mods)], qm.From(from))...)
		return q
	}

	query := func(ctx context.Context, mods ...qm.QueryMod) ([]T, error) {
		q := newQuery(mods)
		queries.SetSelect(q, []string{from + ".*"})

		var rows []T
		if err := q.Bind(ctx, exec, &rows); err != nil {
			return nil, errors.Wrapf(err, "select from %s", table)
		}
		return rows, nil
	}

	count := func(ctx context.Context, mods ...qm.QueryMod) (int64, error) {
		q := newQuery(mods)
		queries.SetCount(q)

		var n int64
		if err := q.QueryRowContext(ctx, exec).Scan(&n); err != nil {
			return 0, errors.Wrapf(err, "count %s", table)
		}
		return n, nil
	}

	return query, count
}
