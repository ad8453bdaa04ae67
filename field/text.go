package field

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/nrfta/datasource-go"
)

// Text is the text field type. Empty strings disable the filter.
type Text struct{}

func NewText() *Text { return &Text{} }

func (*Text) Type() string               { return TypeText }
func (*Text) Kind() datasource.FieldKind { return datasource.KindText }

func (*Text) Comparisons() []datasource.Comparison {
	return []datasource.Comparison{
		datasource.Eq,
		datasource.Neq,
		datasource.In,
		datasource.Contains,
		datasource.IsNull,
	}
}

func (t *Text) Normalize(cmp datasource.Comparison, raw any, _ datasource.Options) (any, bool, error) {
	switch cmp {
	case datasource.IsNull:
		return normalizeIsNull(raw)
	case datasource.In:
		return normalizeList(raw, toText)
	case datasource.Eq, datasource.Neq, datasource.Contains:
		if isEmpty(raw) {
			return nil, false, nil
		}
		s, err := toText(raw)
		if err != nil {
			return nil, false, err
		}
		return s, true, nil
	}
	return nil, false, unsupported(TypeText, cmp)
}

func toText(raw any) (any, error) {
	s, err := cast.ToStringE(raw)
	if err != nil {
		return nil, invalid("%v is not text", raw)
	}
	return strings.TrimSpace(s), nil
}
