package datasource

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/friendsofgo/errors"
	"github.com/spf13/cast"
)

// Reserved keys inside a data source's parameter subtree.
const (
	ParameterFields     = "fields"
	ParameterSort       = "sort"
	ParameterPage       = "page"
	ParameterMaxResults = "maxResults"
)

// Sort directions accepted in parameters and the default_sort option.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Parameters is the raw input handed to BindParameters, keyed by data source
// name:
//
//	datasource.Parameters{
//	    "news": map[string]any{
//	        "fields":     map[string]any{"author": "domain1.com"},
//	        "sort":       []any{"title:desc"},
//	        "page":       2,
//	        "maxResults": 20,
//	    },
//	}
type Parameters map[string]any

// Sort is a single bound ordering directive.
type Sort struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Direction returns "asc" or "desc".
func (s Sort) Direction() string {
	if s.Desc {
		return SortDesc
	}
	return SortAsc
}

func (s Sort) String() string {
	return s.Field + ":" + s.Direction()
}

// parseDirection accepts "asc"/"desc" in any case, or a bool meaning desc.
func parseDirection(dir any) (desc bool, err error) {
	switch v := dir.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case SortAsc, "":
			return false, nil
		case SortDesc:
			return true, nil
		}
	}
	return false, errors.Wrapf(ErrInvalidValue, "sort direction %v", dir)
}

// parseSort turns any supported sort representation into an ordered list.
// order is the field registration order, used to sequence map input.
func parseSort(raw any, order []string) ([]Sort, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []Sort:
		return append([]Sort(nil), v...), nil
	case Sort:
		return []Sort{v}, nil
	case string:
		return parseSortString(v)
	case []string:
		out := make([]Sort, 0, len(v))
		for _, s := range v {
			parsed, err := parseSortString(s)
			if err != nil {
				return nil, err
			}
			out = append(out, parsed...)
		}
		return out, nil
	case []any:
		return parseSortList(v, order)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, dir := range v {
			m[k] = dir
		}
		return parseSortMap(m, order)
	case map[string]any:
		return parseSortMap(v, order)
	}
	return nil, errors.Wrapf(ErrInvalidValue, "unsupported sort value of type %T", raw)
}

func parseSortString(s string) ([]Sort, error) {
	var out []Sort
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, dir, _ := strings.Cut(part, ":")
		desc, err := parseDirection(dir)
		if err != nil {
			return nil, err
		}
		out = append(out, Sort{Field: strings.TrimSpace(name), Desc: desc})
	}
	return out, nil
}

func parseSortList(list []any, order []string) ([]Sort, error) {
	out := make([]Sort, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case Sort:
			out = append(out, v)
		case string:
			parsed, err := parseSortString(v)
			if err != nil {
				return nil, err
			}
			out = append(out, parsed...)
		case map[string]any:
			if len(v) != 1 {
				return nil, errors.Wrapf(ErrInvalidValue, "sort entry must hold exactly one field, got %d", len(v))
			}
			parsed, err := parseSortMap(v, order)
			if err != nil {
				return nil, err
			}
			out = append(out, parsed...)
		default:
			return nil, errors.Wrapf(ErrInvalidValue, "unsupported sort entry of type %T", item)
		}
	}
	return out, nil
}

// parseSortMap orders entries by field registration; keys that are not
// registered follow in lexical order so the caller can report them.
func parseSortMap(m map[string]any, order []string) ([]Sort, error) {
	out := make([]Sort, 0, len(m))
	seen := make(map[string]bool, len(m))
	add := func(name string) error {
		desc, err := parseDirection(m[name])
		if err != nil {
			return err
		}
		out = append(out, Sort{Field: name, Desc: desc})
		seen[name] = true
		return nil
	}
	for _, name := range order {
		if _, ok := m[name]; ok {
			if err := add(name); err != nil {
				return nil, err
			}
		}
	}
	var rest []string
	for name := range m {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	for _, name := range rest {
		if err := add(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// parseInt reads page and maxResults values. Decimal strings from query
// strings are accepted.
func parseInt(raw any) (int, error) {
	if s, ok := raw.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidValue, "%q is not an integer", s)
		}
		return n, nil
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidValue, err.Error())
	}
	return n, nil
}

// asMap reads a nested parameter subtree.
func asMap(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case Parameters:
		return v, nil
	}
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidValue, fmt.Sprintf("expected a map, got %T", raw))
	}
	return m, nil
}
