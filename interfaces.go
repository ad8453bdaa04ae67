package datasource

import "context"

// Driver adapts a concrete backend to the data source contract.
// Implementations include the in-memory collection driver, the SQLBoiler
// query driver and the GORM driver.
//
// A driver holds no per-query state: every Execute call receives the complete
// Query, so one driver value may back many data sources.
//
// Null values sort first in ascending orderings and last in descending ones.
// The collection driver always does this; the SQL drivers do it with
// sqlboiler.PostgresDialect and gormdriver.WithNullsFirst, and otherwise
// follow the database default, which SQLite shares.
type Driver interface {
	// Type is the driver type name, e.g. "collection".
	Type() string

	// FieldType resolves a field type contributed by the driver's extensions.
	// Unknown names fail with a *ConfigurationError.
	FieldType(name string) (FieldType, error)

	// Execute applies the query and returns the page of results plus the
	// total number of items matching the conditions. Backend failures are
	// reported as *DriverError.
	Execute(ctx context.Context, q Query) (Result, error)
}

// DriverFactory builds drivers of one type from untyped options.
type DriverFactory interface {
	DriverType() string
	CreateDriver(options Options) (Driver, error)
}

// DriverExtension contributes field types to drivers of the listed types.
type DriverExtension interface {
	ExtendedDriverTypes() []string
	FieldTypes() []FieldType
}

// Query is everything a driver needs to execute one request.
type Query struct {
	// Conditions are combined with AND.
	Conditions []Condition

	// Orderings are applied in sequence; later entries break ties.
	Orderings []Ordering

	// Offset is the number of matching items to skip.
	Offset int

	// Limit is the maximum number of items to return. Zero means unlimited.
	Limit int
}

// Ordering is a sort directive resolved against a registered field.
type Ordering struct {
	Field  string
	Column string
	Kind   FieldKind
	Desc   bool
}

// Result is the outcome of a query.
type Result interface {
	// Items returns the typed slice of items on the current page, e.g. []*News.
	Items() any

	// Len is the number of items on the current page.
	Len() int

	// TotalCount is the number of items matching the conditions, ignoring
	// offset and limit.
	TotalCount() int64

	Metadata() Metadata
}

// Page is the generic Result implementation used by the typed drivers.
//
// Type parameter T is the item type (e.g., *models.News).
type Page[T any] struct {
	// Nodes contains the items for this page.
	Nodes []T

	// Total is the number of matching items across all pages.
	Total int64

	// Meta provides observability and debugging information.
	Meta Metadata
}

func (p *Page[T]) Items() any         { return p.Nodes }
func (p *Page[T]) Len() int           { return len(p.Nodes) }
func (p *Page[T]) TotalCount() int64  { return p.Total }
func (p *Page[T]) Metadata() Metadata { return p.Meta }

// Metadata provides observability and debugging information about a query.
type Metadata struct {
	// Driver identifies which driver executed the query.
	Driver string

	// QueryTimeMs is the time spent inside Driver.Execute.
	QueryTimeMs int64

	// ItemsExamined is the number of backend items the driver looked at.
	// In-memory drivers report the collection size; SQL drivers report the
	// number of rows fetched.
	ItemsExamined int
}

// Items returns the typed items of r. ok is false when r holds a different
// item type.
//
// Example:
//
//	news, ok := datasource.Items[*News](result)
func Items[T any](r Result) ([]T, bool) {
	if r == nil {
		return nil, false
	}
	items, ok := r.Items().([]T)
	return items, ok
}
