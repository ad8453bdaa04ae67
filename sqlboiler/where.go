package sqlboiler

import (
	"strings"
	"time"

	"github.com/aarondl/sqlboiler/v4/drivers"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"

	"github.com/nrfta/datasource-go"
)

// Dialect controls identifier quoting and how temporal values are passed as
// query arguments.
type Dialect struct {
	// LQ and RQ quote identifiers, e.g. '"' for PostgreSQL and SQLite or '`'
	// for MySQL.
	LQ, RQ byte

	// IndexPlaceholders rewrites ? placeholders to $1, $2... as PostgreSQL
	// expects.
	IndexPlaceholders bool

	// TimeFormat, when set, formats datetime arguments as strings. Use it for
	// backends storing timestamps as text, such as SQLite.
	TimeFormat string

	// NullsFirst adds NULLS FIRST to ascending and NULLS LAST to descending
	// orderings, for backends whose default puts NULLs last.
	NullsFirst bool
}

var (
	// PostgresDialect quotes identifiers with double quotes, numbers its
	// placeholders, passes datetime arguments as time.Time and orders NULLs
	// first.
	PostgresDialect = Dialect{LQ: '"', RQ: '"', IndexPlaceholders: true, NullsFirst: true}

	// SQLiteDialect stores datetimes as "YYYY-MM-DD HH:MM:SS" text.
	SQLiteDialect = Dialect{LQ: '"', RQ: '"', TimeFormat: "2006-01-02 15:04:05"}

	// DefaultDialect is used when no dialect is configured.
	DefaultDialect = PostgresDialect
)

func (d Dialect) boil() *drivers.Dialect {
	return &drivers.Dialect{LQ: rune(d.LQ), RQ: rune(d.RQ), UseIndexPlaceholders: d.IndexPlaceholders}
}

func (d Dialect) quote(column string) string {
	return strmangle.IdentQuote(rune(d.LQ), rune(d.RQ), column)
}

// arg converts a normalised condition value into a query argument. Dates and
// times are always passed as strings so they compare against DATE and TIME
// columns as well as text.
func (d Dialect) arg(kind datasource.FieldKind, v any) any {
	t, ok := v.(time.Time)
	if !ok {
		return v
	}
	switch kind {
	case datasource.KindDate:
		return t.Format("2006-01-02")
	case datasource.KindTime:
		return t.Format("15:04:05")
	}
	if d.TimeFormat != "" {
		return t.Format(d.TimeFormat)
	}
	return t
}

// ConditionsToQueryMods converts conditions into WHERE query mods. SQLBoiler
// combines multiple Where mods with AND.
//
// The conversion follows these rules:
//   - eq/neq/lt/lte/gt/gte → "col op ?"
//   - in → qm.WhereIn("col IN ?", values...)
//   - contains → case-insensitive LIKE with %, _ and \ escaped
//   - between → "col >= ?" and/or "col <= ?" for the bounds present
//   - isNull → "col IS NULL" or "col IS NOT NULL"
//
// Date comparisons cover whole days: eq on a date matches any time on that
// day, lte includes the whole day and so on.
func ConditionsToQueryMods(conds []datasource.Condition, d Dialect) ([]qm.QueryMod, error) {
	mods := make([]qm.QueryMod, 0, len(conds))
	for _, c := range conds {
		mod, err := conditionMod(c, d)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", c.Field)
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

func conditionMod(c datasource.Condition, d Dialect) (qm.QueryMod, error) {
	col := d.quote(c.Column)

	if c.Kind == datasource.KindDate {
		if mod, ok := dateMod(c, col, d); ok {
			return mod, nil
		}
	}

	switch c.Comparison {
	case datasource.Eq:
		return qm.Where(col+" = ?", d.arg(c.Kind, c.Value)), nil
	case datasource.Neq:
		return qm.Where(col+" <> ?", d.arg(c.Kind, c.Value)), nil
	case datasource.Lt:
		return qm.Where(col+" < ?", d.arg(c.Kind, c.Value)), nil
	case datasource.Lte:
		return qm.Where(col+" <= ?", d.arg(c.Kind, c.Value)), nil
	case datasource.Gt:
		return qm.Where(col+" > ?", d.arg(c.Kind, c.Value)), nil
	case datasource.Gte:
		return qm.Where(col+" >= ?", d.arg(c.Kind, c.Value)), nil
	case datasource.Contains:
		s, ok := c.Value.(string)
		if !ok {
			return nil, errors.Wrapf(datasource.ErrInvalidValue, "contains needs text, got %T", c.Value)
		}
		return qm.Where("LOWER("+col+`) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(s))+"%"), nil
	case datasource.In:
		values, ok := c.Value.([]any)
		if !ok {
			return nil, errors.Wrapf(datasource.ErrInvalidValue, "in needs a list, got %T", c.Value)
		}
		args := make([]any, len(values))
		for i, v := range values {
			args[i] = d.arg(c.Kind, v)
		}
		return qm.WhereIn(col+" IN ?", args...), nil
	case datasource.Between:
		r, ok := c.Value.(datasource.Range)
		if !ok {
			return nil, errors.Wrapf(datasource.ErrInvalidValue, "between needs a range, got %T", c.Value)
		}
		return rangeMod(col, d.arg(c.Kind, r.From), d.arg(c.Kind, r.To), "<="), nil
	case datasource.IsNull:
		if isNull, _ := c.Value.(bool); isNull {
			return qm.Where(col + " IS NULL"), nil
		}
		return qm.Where(col + " IS NOT NULL"), nil
	}
	return nil, errors.Wrapf(datasource.ErrUnsupportedComparison, "%q", c.Comparison)
}

// dateMod turns date comparisons into half-open day ranges.
func dateMod(c datasource.Condition, col string, d Dialect) (qm.QueryMod, bool) {
	day := func(v any) (start, next any) {
		t, ok := v.(time.Time)
		if !ok {
			return nil, nil
		}
		return d.arg(c.Kind, t), d.arg(c.Kind, t.AddDate(0, 0, 1))
	}

	switch c.Comparison {
	case datasource.Eq:
		start, next := day(c.Value)
		return rangeMod(col, start, next, "<"), start != nil
	case datasource.Neq:
		start, next := day(c.Value)
		return qm.Where("("+col+" < ? OR "+col+" >= ?)", start, next), start != nil
	case datasource.Lte:
		_, next := day(c.Value)
		return qm.Where(col+" < ?", next), next != nil
	case datasource.Gt:
		_, next := day(c.Value)
		return qm.Where(col+" >= ?", next), next != nil
	case datasource.Between:
		r, ok := c.Value.(datasource.Range)
		if !ok {
			return nil, false
		}
		from, _ := day(r.From)
		_, to := day(r.To)
		return rangeMod(col, from, to, "<"), true
	}
	return nil, false
}

func rangeMod(col string, from, to any, upper string) qm.QueryMod {
	switch {
	case from != nil && to != nil:
		return qm.Where(col+" >= ? AND "+col+" "+upper+" ?", from, to)
	case from != nil:
		return qm.Where(col+" >= ?", from)
	default:
		return qm.Where(col+" "+upper+" ?", to)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
