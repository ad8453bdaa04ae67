// Package collection provides the in-memory data source driver.
//
// The driver filters, sorts and pages a Go slice of structs, struct pointers
// or maps. Column paths are dotted ("category.name") and resolve struct
// fields by name, boil/db/json tag or getter method:
//
//	factory := collection.NewFactory(collection.NewCoreExtension())
//	manager, _ := datasource.NewDriverFactoryManager(factory)
//	dsFactory, _ := datasource.NewFactory(manager, nil)
//	ds, _ := dsFactory.CreateDataSource("collection", datasource.Options{
//	    collection.OptionCollection: news,
//	}, "news")
package collection

import (
	"context"
	"reflect"
	"sort"
	"time"

	"github.com/friendsofgo/errors"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/offset"
)

const (
	// DriverType is the registration name of the collection driver.
	DriverType = "collection"

	// OptionCollection is the driver option holding the slice.
	OptionCollection = "collection"
)

// Driver executes queries against an in-memory slice.
type Driver struct {
	datasource.FieldTypes

	items reflect.Value
}

// New creates a driver over collection, which must be a slice or an array.
// The slice is not copied; callers must not mutate it while data sources use
// the driver.
func New(collection any, exts ...datasource.DriverExtension) (*Driver, error) {
	v := reflect.ValueOf(collection)
	if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
		return nil, &datasource.ConfigurationError{
			Subject: "driver",
			Name:    DriverType,
			Err:     errors.Wrapf(datasource.ErrInvalidOption, "collection must be a slice, got %T", collection),
		}
	}
	if v.Kind() == reflect.Array {
		s := reflect.MakeSlice(reflect.SliceOf(v.Type().Elem()), v.Len(), v.Len())
		reflect.Copy(s, v)
		v = s
	}
	return &Driver{
		FieldTypes: datasource.LoadFieldTypes(DriverType, exts...),
		items:      v,
	}, nil
}

func (d *Driver) Type() string { return DriverType }

// Len is the size of the underlying collection.
func (d *Driver) Len() int { return d.items.Len() }

// Execute filters, sorts and pages the collection. A condition or ordering
// whose column does not resolve, or whose values cannot be coerced to the
// field kind, fails with a *datasource.DriverError.
func (d *Driver) Execute(ctx context.Context, q datasource.Query) (datasource.Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, datasource.NewDriverError(DriverType, err)
	}

	n := d.items.Len()
	matched := make([]int, 0, n)
	for i := 0; i < n; i++ {
		ok, err := d.matches(d.items.Index(i), q.Conditions)
		if err != nil {
			return nil, datasource.NewDriverError(DriverType, err)
		}
		if ok {
			matched = append(matched, i)
		}
	}

	if len(q.Orderings) > 0 {
		if err := d.sort(matched, q.Orderings); err != nil {
			return nil, datasource.NewDriverError(DriverType, err)
		}
	}

	lo, hi := offset.FromOffset(q.Offset, q.Limit).Window(len(matched))
	page := reflect.MakeSlice(d.items.Type(), 0, hi-lo)
	for _, i := range matched[lo:hi] {
		page = reflect.Append(page, d.items.Index(i))
	}

	return &Result{
		items: page,
		total: int64(len(matched)),
		meta: datasource.Metadata{
			Driver:        DriverType,
			QueryTimeMs:   time.Since(start).Milliseconds(),
			ItemsExamined: n,
		},
	}, nil
}

func (d *Driver) matches(item reflect.Value, conds []datasource.Condition) (bool, error) {
	for _, c := range conds {
		value, err := resolve(item, c.Column)
		if err != nil {
			return false, err
		}
		ok, err := match(c, value)
		if err != nil {
			return false, errors.Wrapf(err, "field %q", c.Field)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (d *Driver) sort(indices []int, orderings []datasource.Ordering) error {
	keys := make(map[int][]any, len(indices))
	for _, i := range indices {
		row := make([]any, len(orderings))
		for j, o := range orderings {
			raw, err := resolve(d.items.Index(i), o.Column)
			if err != nil {
				return err
			}
			if row[j], err = coerce(o.Kind, raw); err != nil {
				return errors.Wrapf(err, "sort %q", o.Field)
			}
		}
		keys[i] = row
	}

	sort.SliceStable(indices, func(a, b int) bool {
		ka, kb := keys[indices[a]], keys[indices[b]]
		for j, o := range orderings {
			c := compare(o.Kind, ka[j], kb[j])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return nil
}

// Result is the page returned by the collection driver. Items returns a
// slice of the collection's element type.
type Result struct {
	items reflect.Value
	total int64
	meta  datasource.Metadata
}

func (r *Result) Items() any                    { return r.items.Interface() }
func (r *Result) Len() int                      { return r.items.Len() }
func (r *Result) TotalCount() int64             { return r.total }
func (r *Result) Metadata() datasource.Metadata { return r.meta }
