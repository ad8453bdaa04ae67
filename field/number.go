package field

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/nrfta/datasource-go"
)

// Number is the numeric field type. Values are normalised to float64.
type Number struct{}

func NewNumber() *Number { return &Number{} }

func (*Number) Type() string               { return TypeNumber }
func (*Number) Kind() datasource.FieldKind { return datasource.KindNumber }

func (*Number) Comparisons() []datasource.Comparison {
	return []datasource.Comparison{
		datasource.Eq,
		datasource.Neq,
		datasource.Lt,
		datasource.Lte,
		datasource.Gt,
		datasource.Gte,
		datasource.In,
		datasource.Between,
		datasource.IsNull,
	}
}

func (n *Number) Normalize(cmp datasource.Comparison, raw any, _ datasource.Options) (any, bool, error) {
	switch cmp {
	case datasource.IsNull:
		return normalizeIsNull(raw)
	case datasource.In:
		return normalizeList(raw, toNumber)
	case datasource.Between:
		return normalizeRange(raw, toNumber, func(a, b any) bool {
			return a.(float64) < b.(float64)
		})
	case datasource.Eq, datasource.Neq, datasource.Lt, datasource.Lte, datasource.Gt, datasource.Gte:
		if isEmpty(raw) {
			return nil, false, nil
		}
		f, err := toNumber(raw)
		if err != nil {
			return nil, false, err
		}
		return f, true, nil
	}
	return nil, false, unsupported(TypeNumber, cmp)
}

func toNumber(raw any) (any, error) {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	if _, ok := raw.(bool); ok {
		return nil, invalid("%v is not a number", raw)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, invalid("%v is not a number", raw)
	}
	return f, nil
}
