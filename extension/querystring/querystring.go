// Package querystring binds data source parameters from URL query strings.
//
// Keys use bracket notation rooted at the data source name:
//
//	news[fields][author]=x&news[fields][tags][]=a&news[fields][tags][]=b
//	news[sort][views]=desc&news[sort][title]=asc&news[page]=2&news[maxResults]=20
//
// Sort entries keep their order in the query string, so the example sorts by
// views first. Register the extension on a factory or data source and pass
// the *http.Request, url.Values or raw query string to BindParameters:
//
//	ds.AddExtension(querystring.New())
//	err := ds.BindParameters(ctx, r)
package querystring

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/friendsofgo/errors"

	"github.com/nrfta/datasource-go"
)

// Priority runs the conversion before other preBindParameters hooks, which
// then see the nested parameters.
const Priority = 128

// Extension converts request input into nested parameters.
type Extension struct{}

// New creates the query string extension.
func New() *Extension { return &Extension{} }

func (*Extension) Name() string { return "querystring" }

func (e *Extension) Hooks() []datasource.Hook {
	return []datasource.Hook{{
		Name:     "parse",
		Event:    datasource.PreBindParameters,
		Priority: Priority,
		Fn:       e.convert,
	}}
}

func (e *Extension) convert(_ context.Context, ev *datasource.HookEvent) error {
	var (
		params datasource.Parameters
		err    error
	)
	switch v := ev.Data.(type) {
	case *http.Request:
		if v == nil || v.URL == nil {
			return nil
		}
		params, err = Parse(v.URL.RawQuery)
	case *url.URL:
		params, err = Parse(v.RawQuery)
	case url.Values:
		params = FromValues(v)
	case string:
		params, err = Parse(v)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	ev.Data = params
	return nil
}

// Parse decodes a raw query string, with or without the leading "?".
func Parse(query string) (datasource.Parameters, error) {
	b := newBuilder()
	for _, pair := range strings.Split(strings.TrimPrefix(query, "?"), "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, errors.Wrapf(datasource.ErrInvalidValue, "query key %q: %v", key, err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, errors.Wrapf(datasource.ErrInvalidValue, "query value for %q: %v", k, err)
		}
		b.set(splitKey(k), v)
	}
	return b.params(), nil
}

// FromValues converts decoded values. url.Values does not keep key order, so
// bracketed sort entries are applied in key order.
func FromValues(values url.Values) datasource.Parameters {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := newBuilder()
	for _, k := range keys {
		path := splitKey(k)
		for _, v := range values[k] {
			b.set(path, v)
		}
	}
	return b.params()
}

// splitKey turns "a[b][c][]" into ["a", "b", "c", ""]. Keys with unbalanced
// brackets are taken literally.
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}
	path := []string{key[:open]}
	rest := key[open:]
	for rest != "" {
		if rest[0] != '[' {
			return []string{key}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return []string{key}
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path
}

type sortEntry struct {
	name, field, dir string
}

type builder struct {
	root  map[string]any
	sorts []sortEntry
}

func newBuilder() *builder {
	return &builder{root: map[string]any{}}
}

func (b *builder) set(path []string, value string) {
	if len(path) == 3 && path[1] == datasource.ParameterSort && path[2] != "" {
		b.addSort(sortEntry{name: path[0], field: path[2], dir: value})
		return
	}

	node := b.root
	for i, key := range path[:len(path)-1] {
		next := path[i+1]
		if next == "" {
			list, _ := node[key].([]any)
			if i+1 == len(path)-1 {
				node[key] = append(list, value)
				return
			}
			child := map[string]any{}
			node[key] = append(list, child)
			node = child
			continue
		}
		if key == "" {
			continue
		}
		child, ok := node[key].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[key] = child
		}
		node = child
	}
	if last := path[len(path)-1]; last != "" {
		node[last] = value
	}
}

// addSort records a sort entry, moving a repeated field to its latest
// position.
func (b *builder) addSort(e sortEntry) {
	for i, s := range b.sorts {
		if s.name == e.name && s.field == e.field {
			b.sorts = append(b.sorts[:i], b.sorts[i+1:]...)
			break
		}
	}
	b.sorts = append(b.sorts, e)
}

func (b *builder) params() datasource.Parameters {
	for _, s := range b.sorts {
		sub, ok := b.root[s.name].(map[string]any)
		if !ok {
			sub = map[string]any{}
			b.root[s.name] = sub
		}
		list, _ := sub[datasource.ParameterSort].([]string)
		sub[datasource.ParameterSort] = append(list, s.field+":"+s.dir)
	}
	return datasource.Parameters(b.root)
}
