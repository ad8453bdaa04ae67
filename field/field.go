// Package field provides the core field types: text, number, date, time,
// datetime and boolean.
//
// Field types are stateless. They are contributed to drivers by driver
// extensions and turn raw parameter values into normalised condition values:
//
//	ext := collection.NewCoreExtension(field.WithLocation(time.UTC))
//	factory := collection.NewFactory(ext)
package field

import (
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/spf13/cast"

	"github.com/nrfta/datasource-go"
)

// Registration names of the core field types.
const (
	TypeText     = "text"
	TypeNumber   = "number"
	TypeDate     = "date"
	TypeTime     = "time"
	TypeDateTime = "datetime"
	TypeBoolean  = "boolean"
)

// Default layouts tried, in order, when parsing temporal strings. RFC3339 is
// always tried last.
const (
	DefaultDateLayout     = "2006-01-02"
	DefaultTimeLayout     = "15:04:05"
	DefaultDateTimeLayout = "2006-01-02 15:04:05"
)

type config struct {
	dateLayouts     []string
	timeLayouts     []string
	dateTimeLayouts []string
	location        *time.Location
}

func newConfig(opts []Option) *config {
	c := &config{location: time.UTC}
	for _, opt := range opts {
		opt(c)
	}
	c.dateLayouts = append(c.dateLayouts, DefaultDateLayout, DefaultDateTimeLayout, time.RFC3339)
	c.timeLayouts = append(c.timeLayouts, DefaultTimeLayout, "15:04", DefaultDateTimeLayout, time.RFC3339)
	c.dateTimeLayouts = append(c.dateTimeLayouts, DefaultDateTimeLayout, DefaultDateLayout, time.RFC3339, time.RFC3339Nano)
	return c
}

// Option configures the temporal field types.
type Option func(*config)

// WithDateLayout adds layouts tried before the defaults for date fields.
func WithDateLayout(layouts ...string) Option {
	return func(c *config) { c.dateLayouts = append(c.dateLayouts, layouts...) }
}

// WithTimeLayout adds layouts tried before the defaults for time fields.
func WithTimeLayout(layouts ...string) Option {
	return func(c *config) { c.timeLayouts = append(c.timeLayouts, layouts...) }
}

// WithDateTimeLayout adds layouts tried before the defaults for datetime fields.
func WithDateTimeLayout(layouts ...string) Option {
	return func(c *config) { c.dateTimeLayouts = append(c.dateTimeLayouts, layouts...) }
}

// WithLocation sets the location strings without a zone are parsed in.
// Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.location = loc
		}
	}
}

// Core returns all core field types.
func Core(opts ...Option) []datasource.FieldType {
	return []datasource.FieldType{
		NewText(),
		NewNumber(),
		NewDate(opts...),
		NewTime(opts...),
		NewDateTime(opts...),
		NewBoolean(),
	}
}

func invalid(format string, args ...any) error {
	return errors.Wrapf(datasource.ErrInvalidValue, format, args...)
}

func unsupported(typ string, cmp datasource.Comparison) error {
	return errors.Wrapf(datasource.ErrUnsupportedComparison, "%s does not support %q", typ, cmp)
}

// isEmpty reports whether raw means "no filter".
func isEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

// toList reads an in value: any slice, or a comma separated string.
func toList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case string:
		var out []any
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case []any:
		return v, nil
	}
	s, err := cast.ToSliceE(raw)
	if err == nil {
		return s, nil
	}
	if strs, serr := cast.ToStringSliceE(raw); serr == nil {
		out := make([]any, len(strs))
		for i, str := range strs {
			out[i] = str
		}
		return out, nil
	}
	return nil, invalid("expected a list, got %T", raw)
}

// toRange reads a between value: a datasource.Range, a {from, to} map or a
// two element list.
func toRange(raw any) (from, to any, err error) {
	switch v := raw.(type) {
	case datasource.Range:
		return v.From, v.To, nil
	case *datasource.Range:
		if v == nil {
			return nil, nil, nil
		}
		return v.From, v.To, nil
	case []any:
		if len(v) != 2 {
			return nil, nil, invalid("range needs 2 bounds, got %d", len(v))
		}
		return v[0], v[1], nil
	case []string:
		if len(v) != 2 {
			return nil, nil, invalid("range needs 2 bounds, got %d", len(v))
		}
		return v[0], v[1], nil
	}
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, nil, invalid("expected a {from, to} range, got %T", raw)
	}
	for key := range m {
		if key != "from" && key != "to" {
			return nil, nil, invalid("unexpected range key %q", key)
		}
	}
	return m["from"], m["to"], nil
}

// normalizeRange applies conv to both bounds and checks their order with
// less. Empty bounds are open; a range with no bounds is inactive.
func normalizeRange(raw any, conv func(any) (any, error), less func(a, b any) bool) (any, bool, error) {
	rawFrom, rawTo, err := toRange(raw)
	if err != nil {
		return nil, false, err
	}
	var r datasource.Range
	if !isEmpty(rawFrom) {
		if r.From, err = conv(rawFrom); err != nil {
			return nil, false, err
		}
	}
	if !isEmpty(rawTo) {
		if r.To, err = conv(rawTo); err != nil {
			return nil, false, err
		}
	}
	if r.From == nil && r.To == nil {
		return nil, false, nil
	}
	if r.From != nil && r.To != nil && less(r.To, r.From) {
		return nil, false, errors.Wrapf(datasource.ErrInvalidRange, "%v > %v", r.From, r.To)
	}
	return r, true, nil
}

// normalizeList applies conv to every element of an in value.
func normalizeList(raw any, conv func(any) (any, error)) (any, bool, error) {
	list, err := toList(raw)
	if err != nil {
		return nil, false, err
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		if isEmpty(item) {
			continue
		}
		v, err := conv(item)
		if err != nil {
			return nil, false, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return out, true, nil
}

// normalizeIsNull reads an isNull value; true means "IS NULL".
func normalizeIsNull(raw any) (any, bool, error) {
	b, err := parseBool(raw)
	if err != nil {
		return nil, false, err
	}
	if !b.Valid {
		return nil, false, nil
	}
	return b.Bool, true, nil
}
