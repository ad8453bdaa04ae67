package gormdriver

import (
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"gorm.io/gorm/clause"

	"github.com/nrfta/datasource-go"
)

// whereClause converts conditions into a WHERE clause; GORM joins the
// expressions with AND.
func whereClause(conds []datasource.Condition) (clause.Where, error) {
	where := clause.Where{Exprs: make([]clause.Expression, 0, len(conds))}
	for _, c := range conds {
		expr, err := expression(c)
		if err != nil {
			return where, errors.Wrapf(err, "field %q", c.Field)
		}
		where.Exprs = append(where.Exprs, expr)
	}
	return where, nil
}

func expression(c datasource.Condition) (clause.Expression, error) {
	col := clause.Column{Name: c.Column}

	if c.Kind == datasource.KindDate {
		if expr := dateExpression(col, c.Comparison, c.Value); expr != nil {
			return expr, nil
		}
	}

	v := arg(c.Kind, c.Value)
	switch c.Comparison {
	case datasource.Eq:
		return clause.Eq{Column: col, Value: v}, nil
	case datasource.Neq:
		return clause.Neq{Column: col, Value: v}, nil
	case datasource.Lt:
		return clause.Lt{Column: col, Value: v}, nil
	case datasource.Lte:
		return clause.Lte{Column: col, Value: v}, nil
	case datasource.Gt:
		return clause.Gt{Column: col, Value: v}, nil
	case datasource.Gte:
		return clause.Gte{Column: col, Value: v}, nil
	case datasource.Contains:
		s, ok := c.Value.(string)
		if !ok {
			return nil, errors.Wrapf(datasource.ErrInvalidValue, "contains needs text, got %T", c.Value)
		}
		return clause.Expr{
			SQL:  `LOWER(?) LIKE ? ESCAPE '\'`,
			Vars: []any{col, "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"},
		}, nil
	case datasource.In:
		values, ok := c.Value.([]any)
		if !ok {
			return nil, errors.Wrapf(datasource.ErrInvalidValue, "in needs a list, got %T", c.Value)
		}
		args := make([]any, len(values))
		for i, v := range values {
			args[i] = arg(c.Kind, v)
		}
		return clause.IN{Column: col, Values: args}, nil
	case datasource.Between:
		r, ok := c.Value.(datasource.Range)
		if !ok {
			return nil, errors.Wrapf(datasource.ErrInvalidValue, "between needs a range, got %T", c.Value)
		}
		return bounds(col, arg(c.Kind, r.From), arg(c.Kind, r.To), false), nil
	case datasource.IsNull:
		if isNull, _ := c.Value.(bool); isNull {
			return clause.Eq{Column: col, Value: nil}, nil
		}
		return clause.Neq{Column: col, Value: nil}, nil
	}
	return nil, errors.Wrapf(datasource.ErrUnsupportedComparison, "%q", c.Comparison)
}

// dateExpression matches whole days. It returns nil for comparisons that need
// no adjustment.
func dateExpression(col clause.Column, cmp datasource.Comparison, v any) clause.Expression {
	if cmp == datasource.Between {
		r, ok := v.(datasource.Range)
		if !ok || (r.From == nil && r.To == nil) {
			return nil
		}
		from, _ := day(r.From)
		_, to := day(r.To)
		return bounds(col, from, to, true)
	}

	start, next := day(v)
	if start == nil {
		return nil
	}
	switch cmp {
	case datasource.Eq:
		return bounds(col, start, next, true)
	case datasource.Neq:
		return clause.Or(clause.Lt{Column: col, Value: start}, clause.Gte{Column: col, Value: next})
	case datasource.Lte:
		return clause.Lt{Column: col, Value: next}
	case datasource.Gt:
		return clause.Gte{Column: col, Value: next}
	}
	return nil
}

// day returns the start of v's day and of the following day, or nils when v
// is not a time.
func day(v any) (start, next any) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, nil
	}
	return arg(datasource.KindDate, t), arg(datasource.KindDate, t.AddDate(0, 0, 1))
}

// bounds builds a range check; exclusive makes the upper bound strict.
func bounds(col clause.Column, from, to any, exclusive bool) clause.Expression {
	var upper clause.Expression = clause.Lte{Column: col, Value: to}
	if exclusive {
		upper = clause.Lt{Column: col, Value: to}
	}
	switch {
	case from != nil && to != nil:
		return clause.And(clause.Gte{Column: col, Value: from}, upper)
	case from != nil:
		return clause.Gte{Column: col, Value: from}
	default:
		return upper
	}
}

// arg formats dates and times as strings so they compare against DATE and
// TIME columns as well as text.
func arg(kind datasource.FieldKind, v any) any {
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
	return t
}

func orderBy(orderings []datasource.Ordering) []clause.OrderByColumn {
	cols := make([]clause.OrderByColumn, len(orderings))
	for i, o := range orderings {
		cols[i] = clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc}
	}
	return cols
}

// orderByNullsFirst renders orderings with explicit NULL placement. GORM's
// OrderByColumn has no such flag, so the clause is a single expression.
func orderByNullsFirst(orderings []datasource.Ordering) clause.OrderBy {
	parts := make([]string, len(orderings))
	vars := make([]any, len(orderings))
	for i, o := range orderings {
		parts[i] = "? NULLS FIRST"
		if o.Desc {
			parts[i] = "? DESC NULLS LAST"
		}
		vars[i] = clause.Column{Name: o.Column}
	}
	return clause.OrderBy{Expression: clause.Expr{SQL: strings.Join(parts, ", "), Vars: vars}}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
