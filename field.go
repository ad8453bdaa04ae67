package datasource

import (
	"strings"

	"github.com/friendsofgo/errors"
	"github.com/spf13/cast"
)

// FieldKind identifies the value domain of a field type. Drivers dispatch on
// the kind when comparing or ordering values.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindDate
	KindTime
	KindDateTime
	KindBoolean
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "datetime"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Comparison is the operator a field applies to its bound value.
type Comparison string

const (
	Eq       Comparison = "eq"
	Neq      Comparison = "neq"
	Lt       Comparison = "lt"
	Lte      Comparison = "lte"
	Gt       Comparison = "gt"
	Gte      Comparison = "gte"
	In       Comparison = "in"
	Contains Comparison = "contains"
	Between  Comparison = "between"
	IsNull   Comparison = "isNull"
)

// Option keys understood by the core. Drivers and extensions may define more.
const (
	OptionField               = "field"
	OptionSortable            = "sortable"
	OptionDefaultSort         = "default_sort"
	OptionDefaultSortPriority = "default_sort_priority"
	OptionLabel               = "label"
)

// Options is a free-form option bag attached to fields and drivers.
type Options map[string]any

// String returns the option as a string, or def when absent.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok && v != nil {
		if s, err := cast.ToStringE(v); err == nil {
			return s
		}
	}
	return def
}

// Bool returns the option as a bool, or def when absent or unparsable.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok && v != nil {
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	}
	return def
}

// Int returns the option as an int, or def when absent or unparsable.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok && v != nil {
		if i, err := cast.ToIntE(v); err == nil {
			return i
		}
	}
	return def
}

func (o Options) clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Range is the value of a between condition. A nil bound is open.
type Range struct {
	From any `json:"from,omitempty"`
	To   any `json:"to,omitempty"`
}

// Condition is the typed predicate a field hands to the driver.
//
// Value depends on Comparison: a Range for Between, a []any for In, a bool
// for IsNull (true means "IS NULL") and a single normalised value otherwise.
type Condition struct {
	Field      string
	Column     string
	Kind       FieldKind
	Comparison Comparison
	Value      any
}

// FieldType validates and normalises raw parameter values for one kind of
// field. Implementations live in the field package and are contributed to
// drivers by extensions.
type FieldType interface {
	// Type is the registration name, e.g. "text" or "datetime".
	Type() string
	Kind() FieldKind
	Comparisons() []Comparison
	// Normalize coerces raw into the comparison value. active is false when
	// raw means "no filter" (nil, empty string, empty range).
	Normalize(cmp Comparison, raw any, opts Options) (value any, active bool, err error)
}

// SupportsComparison reports whether ft accepts cmp.
func SupportsComparison(ft FieldType, cmp Comparison) bool {
	for _, c := range ft.Comparisons() {
		if c == cmp {
			return true
		}
	}
	return false
}

// Field is a named FieldType registration on a DataSource. The definition is
// fixed at registration; only the bound value changes.
type Field struct {
	name       string
	fieldType  FieldType
	comparison Comparison
	options    Options

	raw    any
	value  any
	active bool
}

func newField(name string, ft FieldType, cmp Comparison, opts Options) (*Field, error) {
	if strings.TrimSpace(name) == "" {
		return nil, configErr("field", name, errors.Wrap(ErrInvalidName, "field name is empty"))
	}
	if !SupportsComparison(ft, cmp) {
		return nil, configErr("field", name,
			errors.Wrapf(ErrUnsupportedComparison, "%s does not support %q", ft.Type(), cmp))
	}
	if opts == nil {
		opts = Options{}
	}
	if dir, ok := opts[OptionDefaultSort]; ok {
		if _, err := parseDirection(dir); err != nil {
			return nil, configErr("field", name, errors.Wrap(ErrInvalidOption, err.Error()))
		}
	}
	return &Field{
		name:       name,
		fieldType:  ft,
		comparison: cmp,
		options:    opts.clone(),
	}, nil
}

func (f *Field) Name() string           { return f.name }
func (f *Field) Type() string           { return f.fieldType.Type() }
func (f *Field) Kind() FieldKind        { return f.fieldType.Kind() }
func (f *Field) FieldType() FieldType   { return f.fieldType }
func (f *Field) Comparison() Comparison { return f.comparison }
func (f *Field) RawValue() any          { return f.raw }
func (f *Field) Value() any             { return f.value }
func (f *Field) Active() bool           { return f.active }

// Option returns a single option value.
func (f *Field) Option(key string) (any, bool) {
	v, ok := f.options[key]
	return v, ok
}

// Options returns a copy of the field options.
func (f *Field) Options() Options { return f.options.clone() }

// Column is the backend column or member path the field filters on.
func (f *Field) Column() string {
	return f.options.String(OptionField, f.name)
}

// Sortable reports whether the field may appear in sort parameters.
func (f *Field) Sortable() bool {
	return f.options.Bool(OptionSortable, true)
}

// BindParameter normalises raw through the field type. On failure the field
// is left inactive and the returned error is a *ValidationError.
func (f *Field) BindParameter(raw any) error {
	f.Reset()
	value, active, err := f.fieldType.Normalize(f.comparison, raw, f.options)
	if err != nil {
		return &ValidationError{Field: f.name, Value: raw, Err: err}
	}
	f.raw = raw
	f.value = value
	f.active = active
	return nil
}

// Reset clears the bound value.
func (f *Field) Reset() {
	f.raw, f.value, f.active = nil, nil, false
}

// Condition returns the predicate for the bound value. ok is false when the
// field has nothing to filter on.
func (f *Field) Condition() (Condition, bool) {
	if !f.active {
		return Condition{}, false
	}
	return Condition{
		Field:      f.name,
		Column:     f.Column(),
		Kind:       f.Kind(),
		Comparison: f.comparison,
		Value:      f.value,
	}, true
}

func (f *Field) defaultSort() (desc bool, priority int, ok bool) {
	dir, found := f.options[OptionDefaultSort]
	if !found {
		return false, 0, false
	}
	desc, err := parseDirection(dir)
	if err != nil {
		return false, 0, false
	}
	return desc, f.options.Int(OptionDefaultSortPriority, 0), true
}
