package field

import (
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/spf13/cast"

	"github.com/nrfta/datasource-go"
)

// Boolean is the boolean field type. It accepts 1/0, true/false and their
// string forms. nil and "" disable the filter rather than meaning false.
type Boolean struct{}

func NewBoolean() *Boolean { return &Boolean{} }

func (*Boolean) Type() string               { return TypeBoolean }
func (*Boolean) Kind() datasource.FieldKind { return datasource.KindBoolean }

func (*Boolean) Comparisons() []datasource.Comparison {
	return []datasource.Comparison{datasource.Eq, datasource.Neq, datasource.IsNull}
}

func (b *Boolean) Normalize(cmp datasource.Comparison, raw any, _ datasource.Options) (any, bool, error) {
	switch cmp {
	case datasource.IsNull:
		return normalizeIsNull(raw)
	case datasource.Eq, datasource.Neq:
		v, err := parseBool(raw)
		if err != nil {
			return nil, false, err
		}
		if !v.Valid {
			return nil, false, nil
		}
		return v.Bool, true, nil
	}
	return nil, false, unsupported(TypeBoolean, cmp)
}

// parseBool returns an invalid null.Bool for nil and empty strings.
func parseBool(raw any) (null.Bool, error) {
	switch v := raw.(type) {
	case nil:
		return null.Bool{}, nil
	case null.Bool:
		return v, nil
	case *bool:
		if v == nil {
			return null.Bool{}, nil
		}
		return null.BoolFrom(*v), nil
	case bool:
		return null.BoolFrom(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return null.Bool{}, nil
		}
		b, err := cast.ToBoolE(s)
		if err != nil {
			return null.Bool{}, invalid("%q is not a boolean", v)
		}
		return null.BoolFrom(b), nil
	}

	n, err := cast.ToInt64E(raw)
	if err != nil || (n != 0 && n != 1) {
		return null.Bool{}, invalid("%v is not a boolean", raw)
	}
	return null.BoolFrom(n == 1), nil
}
