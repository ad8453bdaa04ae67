// Package datasource applies field-based filtering, sorting and pagination
// to an arbitrary backend.
//
// A DataSource owns an ordered set of fields. Parameters bound from a request
// are normalised by each field's type into conditions, and a Driver turns the
// conditions, orderings and page window into a backend query:
//
//	ds, err := factory.CreateDataSource("collection", datasource.Options{"collection": news}, "news")
//	_ = ds.AddField("author", "text", datasource.Contains, nil)
//	_ = ds.AddField("created", "datetime", datasource.Between, datasource.Options{"field": "CreateDate"})
//	if err := ds.BindParameters(ctx, params); err != nil {
//	    var verrs datasource.ValidationErrors
//	    if errors.As(err, &verrs) { ... }
//	}
//	result, err := ds.Result(ctx)
//	view, err := ds.CreateView(ctx)
//
// A DataSource is not safe for concurrent use; create one per request.
package datasource

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/go-logr/logr"

	"github.com/nrfta/datasource-go/offset"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// State is the lifecycle position of a DataSource.
type State int

const (
	StateIdle State = iota
	StateFieldsRegistered
	StateParametersBound
	StateResultComputed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFieldsRegistered:
		return "fields registered"
	case StateParametersBound:
		return "parameters bound"
	case StateResultComputed:
		return "result computed"
	default:
		return "unknown"
	}
}

// DataSource orchestrates fields, bound parameters, the driver and the
// result cache.
type DataSource struct {
	name       string
	driver     Driver
	logger     logr.Logger
	pagination *PaginationConfig

	fields     []*Field
	fieldTypes map[string]FieldType
	extensions []Extension
	hooks      hookRegistry

	parameters map[string]any
	sorts      []Sort
	page       int
	maxResults int

	state      State
	result     Result
	cacheValid bool
}

// DataSourceOption configures a DataSource at construction.
type DataSourceOption func(*DataSource)

// WithLogger sets the logger. Lifecycle events are logged at V(1).
func WithLogger(logger logr.Logger) DataSourceOption {
	return func(ds *DataSource) {
		ds.logger = logger
	}
}

// WithPagination sets the default page size and the cap applied to bound
// maxResults values.
func WithPagination(config *PaginationConfig) DataSourceOption {
	return func(ds *DataSource) {
		if config != nil {
			c := *config
			ds.pagination = &c
		}
	}
}

// WithExtensions registers extensions in order.
func WithExtensions(exts ...Extension) DataSourceOption {
	return func(ds *DataSource) {
		for _, ext := range exts {
			ds.AddExtension(ext)
		}
	}
}

// New creates a DataSource over driver. The name must match [A-Za-z0-9_]+; it
// selects the parameter subtree on bind.
func New(name string, driver Driver, opts ...DataSourceOption) (*DataSource, error) {
	if !namePattern.MatchString(name) {
		return nil, configErr("data source", name, errors.Wrap(ErrInvalidName, "name must match [A-Za-z0-9_]+"))
	}
	if driver == nil {
		return nil, configErr("data source", name, errors.Wrap(ErrInvalidOption, "driver is nil"))
	}

	ds := &DataSource{
		name:       name,
		driver:     driver,
		logger:     logr.Discard(),
		pagination: NewPaginationConfig(),
		fieldTypes: map[string]FieldType{},
		page:       1,
	}
	for _, opt := range opts {
		opt(ds)
	}
	ds.maxResults = ds.pagination.DefaultMaxResults
	ds.logger = ds.logger.WithValues("datasource", name, "driver", driver.Type())
	return ds, nil
}

func (ds *DataSource) Name() string        { return ds.name }
func (ds *DataSource) Driver() Driver      { return ds.driver }
func (ds *DataSource) State() State        { return ds.state }
func (ds *DataSource) Page() int           { return ds.page }
func (ds *DataSource) MaxResults() int     { return ds.maxResults }
func (ds *DataSource) Sorts() []Sort       { return append([]Sort(nil), ds.sorts...) }
func (ds *DataSource) Logger() logr.Logger { return ds.logger }

// AddExtension registers the extension's hooks and any field types it
// provides.
func (ds *DataSource) AddExtension(ext Extension) {
	if ext == nil {
		return
	}
	ds.extensions = append(ds.extensions, ext)
	ds.hooks.add(ext.Name(), ext.Hooks()...)
	if p, ok := ext.(FieldTypeProvider); ok {
		for _, ft := range p.FieldTypes() {
			ds.fieldTypes[ft.Type()] = ft
		}
	}
}

// Extensions returns the registered extensions in registration order.
func (ds *DataSource) Extensions() []Extension {
	return append([]Extension(nil), ds.extensions...)
}

// AddField registers a field. The type is resolved against the data source's
// extensions first, then the driver.
func (ds *DataSource) AddField(name, typ string, cmp Comparison, opts Options) error {
	if ds.HasField(name) {
		return configErr("field", name, ErrDuplicateField)
	}

	ft, ok := ds.fieldTypes[typ]
	if !ok {
		var err error
		if ft, err = ds.driver.FieldType(typ); err != nil {
			return errors.Wrapf(err, "field %q", name)
		}
	}

	f, err := newField(name, ft, cmp, opts)
	if err != nil {
		return err
	}
	ds.fields = append(ds.fields, f)
	ds.state = StateFieldsRegistered
	ds.invalidate()

	ds.logger.V(1).Info("field added", "field", name, "type", typ, "comparison", cmp)
	return nil
}

// HasField reports whether a field with the given name is registered.
func (ds *DataSource) HasField(name string) bool {
	return ds.Field(name) != nil
}

// Field returns the named field, or nil.
func (ds *DataSource) Field(name string) *Field {
	for _, f := range ds.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// Fields returns the registered fields in registration order.
func (ds *DataSource) Fields() []*Field {
	return append([]*Field(nil), ds.fields...)
}

// RemoveField unregisters a field. It reports whether the field existed.
// Bound parameters stay bound; removing the last field returns to Idle.
func (ds *DataSource) RemoveField(name string) bool {
	for i, f := range ds.fields {
		if f.name != name {
			continue
		}
		ds.fields = append(ds.fields[:i], ds.fields[i+1:]...)
		ds.sorts = dropSort(ds.sorts, name)
		ds.invalidate()
		if len(ds.fields) == 0 {
			ds.state = StateIdle
		}
		return true
	}
	return false
}

// ClearFields removes every field and returns the data source to Idle.
func (ds *DataSource) ClearFields() {
	ds.fields = nil
	ds.sorts = nil
	ds.state = StateIdle
	ds.invalidate()
	ds.logger.V(1).Info("fields cleared")
}

// SetMaxResults sets the page size. Zero means unlimited. Values set here are
// not subject to the bind cap.
func (ds *DataSource) SetMaxResults(n int) {
	if n < 0 {
		n = 0
	}
	ds.maxResults = n
	ds.invalidate()
}

// Parameters returns the last bound parameters keyed by data source name, or
// an empty map when nothing was bound.
func (ds *DataSource) Parameters() Parameters {
	if ds.parameters == nil {
		return Parameters{}
	}
	return Parameters{ds.name: ds.parameters}
}

// BindParameters binds raw to the registered fields, the sort, page and
// maxResults. Every field without an entry is reset. Failures do not stop
// binding; they are returned together as ValidationErrors after the data
// source has moved to ParametersBound. Hook failures abort the bind.
func (ds *DataSource) BindParameters(ctx context.Context, raw any) error {
	pre := &HookEvent{DataSource: ds, Event: PreBindParameters, Data: raw}
	if err := ds.hooks.dispatch(ctx, pre); err != nil {
		return err
	}

	var verrs ValidationErrors
	reject := func(field string, value any, err error) {
		verrs = append(verrs, &ValidationError{Field: field, Value: value, Err: err})
	}

	params, err := asMap(pre.Data)
	if err != nil {
		reject(ds.name, pre.Data, err)
	}
	sub, err := asMap(params[ds.name])
	if err != nil {
		reject(ds.name, params[ds.name], err)
	}
	fieldValues, err := asMap(sub[ParameterFields])
	if err != nil {
		reject(ParameterFields, sub[ParameterFields], err)
	}

	for _, f := range ds.fields {
		value, ok := fieldValues[f.name]
		if !ok {
			f.Reset()
			continue
		}
		if err := f.BindParameter(value); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				verrs = append(verrs, ve)
			} else {
				reject(f.name, value, err)
			}
		}
	}

	ds.sorts = nil
	if rawSort, ok := sub[ParameterSort]; ok {
		sorts, err := parseSort(rawSort, ds.fieldNames())
		if err != nil {
			reject(ParameterSort, rawSort, err)
		}
		for _, s := range sorts {
			f := ds.Field(s.Field)
			switch {
			case f == nil:
				reject(ParameterSort+"."+s.Field, s.Direction(), ErrUnknownField)
			case !f.Sortable():
				reject(ParameterSort+"."+s.Field, s.Direction(), ErrNotSortable)
			default:
				ds.sorts = dropSort(ds.sorts, s.Field)
				ds.sorts = append(ds.sorts, s)
			}
		}
	}

	if rawMax, ok := sub[ParameterMaxResults]; ok && rawMax != nil && rawMax != "" {
		n, err := parseInt(rawMax)
		if err == nil && n < 0 {
			err = ds.pagination.Validate(n)
		}
		if err != nil {
			reject(ParameterMaxResults, rawMax, err)
		} else {
			ds.maxResults = ds.pagination.EffectiveMaxResults(n)
		}
	}

	ds.page = 1
	if rawPage, ok := sub[ParameterPage]; ok && rawPage != nil && rawPage != "" {
		page, err := parseInt(rawPage)
		switch {
		case err != nil:
			reject(ParameterPage, rawPage, err)
		case page < 1:
			reject(ParameterPage, rawPage, errors.Wrap(ErrInvalidValue, "page must be at least 1"))
		case offset.Overflows(page, ds.maxResults):
			reject(ParameterPage, rawPage, errors.Wrap(ErrInvalidValue, "page offset overflows"))
		default:
			ds.page = page
		}
	}

	ds.parameters = sub
	ds.state = StateParametersBound
	ds.invalidate()

	post := &HookEvent{DataSource: ds, Event: PostBindParameters, Data: pre.Data}
	if len(verrs) > 0 {
		post.Err = verrs
	}
	if err := ds.hooks.dispatch(ctx, post); err != nil {
		return err
	}

	ds.logger.V(1).Info("parameters bound",
		"active", len(ds.conditions()), "sort", ds.sorts, "page", ds.page,
		"maxResults", ds.maxResults, "invalid", len(verrs))
	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// Result executes the query, or returns the cached result when nothing
// changed since the last execution. Driver failures are returned as
// *DriverError and leave no cached result.
func (ds *DataSource) Result(ctx context.Context) (Result, error) {
	if ds.cacheValid {
		return ds.result, nil
	}

	if err := ds.hooks.dispatch(ctx, &HookEvent{DataSource: ds, Event: PreGetResult}); err != nil {
		return nil, err
	}

	q := ds.Query()
	start := time.Now()
	result, err := ds.driver.Execute(ctx, q)
	elapsed := time.Since(start)

	post := &HookEvent{DataSource: ds, Event: PostGetResult, Result: result, Duration: elapsed}
	if err != nil {
		err = NewDriverError(ds.driver.Type(), err)
		ds.logger.Error(err, "query execution failed")
		post.Result, post.Err = nil, err
		if hookErr := ds.hooks.dispatch(ctx, post); hookErr != nil {
			ds.logger.Error(hookErr, "postGetResult hook failed after driver error")
		}
		return nil, err
	}

	if err := ds.hooks.dispatch(ctx, post); err != nil {
		return nil, err
	}

	ds.result = post.Result
	if ds.result == nil {
		ds.result = result
	}
	ds.cacheValid = true
	ds.state = StateResultComputed

	ds.logger.V(1).Info("result computed",
		"items", ds.result.Len(), "total", ds.result.TotalCount(), "elapsed", elapsed)
	return ds.result, nil
}

// Query builds the driver query from the current state: active conditions in
// field registration order, the bound sort or else the fields' default sort,
// and the page window.
func (ds *DataSource) Query() Query {
	p := offset.New(ds.page, ds.maxResults)
	return Query{
		Conditions: ds.conditions(),
		Orderings:  ds.orderings(),
		Offset:     p.Offset,
		Limit:      p.Limit,
	}
}

// CreateView builds a snapshot of the current state. It does not execute the
// query; the total count is known only when a cached result exists.
func (ds *DataSource) CreateView(ctx context.Context) (*View, error) {
	view := &View{
		Name:       ds.name,
		Sort:       ds.Sorts(),
		Parameters: ds.Parameters(),
		Attributes: map[string]any{},
	}

	directions := map[string]string{}
	for _, s := range ds.effectiveSorts() {
		directions[s.Field] = s.Direction()
	}
	for _, f := range ds.fields {
		view.Fields = append(view.Fields, FieldView{
			Name:          f.name,
			Type:          f.Type(),
			Comparison:    f.comparison,
			CurrentValue:  f.raw,
			Sortable:      f.Sortable(),
			SortDirection: directions[f.name],
			Label:         f.options.String(OptionLabel, f.name),
			Options:       f.Options(),
		})
	}

	var total *int64
	if ds.cacheValid && ds.result != nil {
		n := ds.result.TotalCount()
		total = &n
	}
	view.Pagination = newPaginationView(ds.page, ds.maxResults, total)

	if err := ds.hooks.dispatch(ctx, &HookEvent{DataSource: ds, Event: PreBuildView, View: view}); err != nil {
		return nil, err
	}
	if err := ds.hooks.dispatch(ctx, &HookEvent{DataSource: ds, Event: PostBuildView, View: view}); err != nil {
		return nil, err
	}
	return view, nil
}

func (ds *DataSource) invalidate() {
	ds.result = nil
	ds.cacheValid = false
	if ds.state == StateResultComputed {
		ds.state = StateParametersBound
	}
}

func (ds *DataSource) fieldNames() []string {
	names := make([]string, len(ds.fields))
	for i, f := range ds.fields {
		names[i] = f.name
	}
	return names
}

func (ds *DataSource) conditions() []Condition {
	var conds []Condition
	for _, f := range ds.fields {
		if c, ok := f.Condition(); ok {
			conds = append(conds, c)
		}
	}
	return conds
}

// effectiveSorts is the bound sort, or the default sort of the fields ordered
// by priority (higher first, then registration order).
func (ds *DataSource) effectiveSorts() []Sort {
	if len(ds.sorts) > 0 {
		return ds.sorts
	}

	type entry struct {
		sort     Sort
		priority int
	}
	var defaults []entry
	for _, f := range ds.fields {
		if desc, priority, ok := f.defaultSort(); ok {
			defaults = append(defaults, entry{Sort{Field: f.name, Desc: desc}, priority})
		}
	}
	sort.SliceStable(defaults, func(i, j int) bool {
		return defaults[i].priority > defaults[j].priority
	})

	sorts := make([]Sort, len(defaults))
	for i, d := range defaults {
		sorts[i] = d.sort
	}
	return sorts
}

func (ds *DataSource) orderings() []Ordering {
	var out []Ordering
	for _, s := range ds.effectiveSorts() {
		f := ds.Field(s.Field)
		if f == nil {
			continue
		}
		out = append(out, Ordering{Field: f.name, Column: f.Column(), Kind: f.Kind(), Desc: s.Desc})
	}
	return out
}

func dropSort(sorts []Sort, field string) []Sort {
	out := sorts[:0]
	for _, s := range sorts {
		if s.Field != field {
			out = append(out, s)
		}
	}
	return out
}
