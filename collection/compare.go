package collection

import (
	"cmp"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/spf13/cast"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/field"
)

// ErrTypeMismatch is returned when an item value cannot be read as the kind
// of the field filtering or sorting on it.
var ErrTypeMismatch = errors.New("type mismatch")

// coerce converts an item value to the representation field types normalise
// condition values to. nil stays nil.
func coerce(kind datasource.FieldKind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var (
		out any
		err error
	)
	switch kind {
	case datasource.KindText:
		out, err = cast.ToStringE(v)
	case datasource.KindNumber:
		out, err = cast.ToFloat64E(v)
	case datasource.KindBoolean:
		out, err = cast.ToBoolE(v)
	case datasource.KindDate, datasource.KindTime, datasource.KindDateTime:
		var t time.Time
		if t, err = cast.ToTimeE(v); err == nil {
			switch kind {
			case datasource.KindDate:
				t = field.DateOf(t)
			case datasource.KindTime:
				t = field.ClockOf(t)
			}
			out = t
		}
	default:
		err = errors.Errorf("unknown kind %d", kind)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrTypeMismatch, "%v (%T) as %s", v, v, kind)
	}
	return out, nil
}

// compare orders two coerced values of the same kind. nil sorts first.
func compare(kind datasource.FieldKind, a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch kind {
	case datasource.KindText:
		return strings.Compare(a.(string), b.(string))
	case datasource.KindNumber:
		return cmp.Compare(a.(float64), b.(float64))
	case datasource.KindBoolean:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	default:
		return a.(time.Time).Compare(b.(time.Time))
	}
}

// match evaluates a condition against a raw item value. A nil item value
// only matches isNull, as in SQL.
func match(c datasource.Condition, raw any) (bool, error) {
	v, err := coerce(c.Kind, raw)
	if err != nil {
		return false, err
	}
	if c.Comparison == datasource.IsNull {
		return (v == nil) == c.Value.(bool), nil
	}
	if v == nil {
		return false, nil
	}

	switch c.Comparison {
	case datasource.Eq:
		return compare(c.Kind, v, c.Value) == 0, nil
	case datasource.Neq:
		return compare(c.Kind, v, c.Value) != 0, nil
	case datasource.Lt:
		return compare(c.Kind, v, c.Value) < 0, nil
	case datasource.Lte:
		return compare(c.Kind, v, c.Value) <= 0, nil
	case datasource.Gt:
		return compare(c.Kind, v, c.Value) > 0, nil
	case datasource.Gte:
		return compare(c.Kind, v, c.Value) >= 0, nil
	case datasource.Contains:
		return strings.Contains(strings.ToLower(v.(string)), strings.ToLower(c.Value.(string))), nil
	case datasource.In:
		for _, candidate := range c.Value.([]any) {
			if compare(c.Kind, v, candidate) == 0 {
				return true, nil
			}
		}
		return false, nil
	case datasource.Between:
		r := c.Value.(datasource.Range)
		if r.From != nil && compare(c.Kind, v, r.From) < 0 {
			return false, nil
		}
		if r.To != nil && compare(c.Kind, v, r.To) > 0 {
			return false, nil
		}
		return true, nil
	}
	return false, errors.Wrapf(datasource.ErrUnsupportedComparison, "%q", c.Comparison)
}
