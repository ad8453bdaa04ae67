package datasource

// View is a read-only snapshot of a DataSource for rendering collaborators.
// Only PreBuildView and PostBuildView hooks may touch it, and then only
// Attributes.
type View struct {
	Name       string         `json:"name"`
	Fields     []FieldView    `json:"fields"`
	Sort       []Sort         `json:"sort,omitempty"`
	Pagination PaginationView `json:"pagination"`
	Parameters Parameters     `json:"parameters,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// FieldView describes one registered field and its bound value.
type FieldView struct {
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Comparison    Comparison `json:"comparison"`
	CurrentValue  any        `json:"currentValue"`
	Sortable      bool       `json:"sortable"`
	SortDirection string     `json:"sortDirection,omitempty"`
	Label         string     `json:"label"`
	Options       Options    `json:"options,omitempty"`
}

// Field returns the view of the named field.
func (v *View) Field(name string) (FieldView, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldView{}, false
}

// SetAttribute stores a rendering hint. Intended for view hooks.
func (v *View) SetAttribute(key string, value any) {
	if v.Attributes == nil {
		v.Attributes = map[string]any{}
	}
	v.Attributes[key] = value
}

// Attribute returns a rendering hint set by a view hook.
func (v *View) Attribute(key string) (any, bool) {
	value, ok := v.Attributes[key]
	return value, ok
}
