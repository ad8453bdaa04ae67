package field

import (
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/spf13/cast"

	"github.com/nrfta/datasource-go"
)

// Temporal implements the date, time and datetime field types. They differ
// in the layouts they parse and in how a parsed instant is reduced:
//   - date values become midnight UTC of their calendar date
//   - time values become their clock reading on January 1st of year 0, UTC
//   - datetime values are kept as parsed
type Temporal struct {
	name    string
	kind    datasource.FieldKind
	layouts []string
	loc     *time.Location
}

func NewDate(opts ...Option) *Temporal {
	c := newConfig(opts)
	return &Temporal{name: TypeDate, kind: datasource.KindDate, layouts: c.dateLayouts, loc: c.location}
}

func NewTime(opts ...Option) *Temporal {
	c := newConfig(opts)
	return &Temporal{name: TypeTime, kind: datasource.KindTime, layouts: c.timeLayouts, loc: c.location}
}

func NewDateTime(opts ...Option) *Temporal {
	c := newConfig(opts)
	return &Temporal{name: TypeDateTime, kind: datasource.KindDateTime, layouts: c.dateTimeLayouts, loc: c.location}
}

func (t *Temporal) Type() string               { return t.name }
func (t *Temporal) Kind() datasource.FieldKind { return t.kind }

func (*Temporal) Comparisons() []datasource.Comparison {
	return []datasource.Comparison{
		datasource.Eq,
		datasource.Neq,
		datasource.Lt,
		datasource.Lte,
		datasource.Gt,
		datasource.Gte,
		datasource.Between,
		datasource.IsNull,
	}
}

func (t *Temporal) Normalize(cmp datasource.Comparison, raw any, _ datasource.Options) (any, bool, error) {
	switch cmp {
	case datasource.IsNull:
		return normalizeIsNull(raw)
	case datasource.Between:
		return normalizeRange(raw, t.convert, func(a, b any) bool {
			return a.(time.Time).Before(b.(time.Time))
		})
	case datasource.Eq, datasource.Neq, datasource.Lt, datasource.Lte, datasource.Gt, datasource.Gte:
		v, err := t.parse(raw)
		if err != nil {
			return nil, false, err
		}
		if !v.Valid {
			return nil, false, nil
		}
		return v.Time, true, nil
	}
	return nil, false, unsupported(t.name, cmp)
}

func (t *Temporal) convert(raw any) (any, error) {
	v, err := t.parse(raw)
	if err != nil {
		return nil, err
	}
	if !v.Valid {
		return nil, invalid("empty %s bound", t.name)
	}
	return v.Time, nil
}

// parse returns an invalid null.Time for values meaning "no filter".
func (t *Temporal) parse(raw any) (null.Time, error) {
	var parsed time.Time
	switch v := raw.(type) {
	case nil:
		return null.Time{}, nil
	case null.Time:
		if !v.Valid {
			return null.Time{}, nil
		}
		parsed = v.Time
	case *time.Time:
		if v == nil {
			return null.Time{}, nil
		}
		parsed = *v
	case time.Time:
		parsed = v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return null.Time{}, nil
		}
		var err error
		if parsed, err = t.parseString(s); err != nil {
			return null.Time{}, err
		}
	default:
		var err error
		if parsed, err = cast.ToTimeInDefaultLocationE(raw, t.loc); err != nil {
			return null.Time{}, invalid("%v is not a %s", raw, t.name)
		}
	}
	return null.TimeFrom(t.reduce(parsed)), nil
}

func (t *Temporal) parseString(s string) (time.Time, error) {
	for _, layout := range t.layouts {
		if parsed, err := time.ParseInLocation(layout, s, t.loc); err == nil {
			return parsed, nil
		}
	}
	if parsed, err := cast.ToTimeInDefaultLocationE(s, t.loc); err == nil {
		return parsed, nil
	}
	return time.Time{}, invalid("%q is not a %s", s, t.name)
}

func (t *Temporal) reduce(v time.Time) time.Time {
	switch t.kind {
	case datasource.KindDate:
		return DateOf(v)
	case datasource.KindTime:
		return ClockOf(v)
	}
	return v
}

// DateOf returns midnight UTC of the calendar date of v in its own location.
func DateOf(v time.Time) time.Time {
	y, m, d := v.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClockOf returns the clock reading of v on January 1st of year 0, UTC.
func ClockOf(v time.Time) time.Time {
	h, m, s := v.Clock()
	return time.Date(0, time.January, 1, h, m, s, v.Nanosecond(), time.UTC)
}
