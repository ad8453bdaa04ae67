package datasource

import (
	"context"
	"sort"
	"time"

	"github.com/friendsofgo/errors"
)

// Event names a point in the DataSource lifecycle where hooks run.
type Event string

const (
	PreBindParameters  Event = "preBindParameters"
	PostBindParameters Event = "postBindParameters"
	PreGetResult       Event = "preGetResult"
	PostGetResult      Event = "postGetResult"
	PreBuildView       Event = "preBuildView"
	PostBuildView      Event = "postBuildView"
)

// HookEvent is passed to every hook. Hooks communicate with later hooks and
// with the DataSource by mutating it:
//   - PreBindParameters hooks may replace Data.
//   - PostGetResult hooks may replace Result. Clearing it keeps the driver's
//     result.
//   - PostBuildView hooks may decorate View.Attributes.
type HookEvent struct {
	DataSource *DataSource
	Event      Event

	// Data is the raw bind input.
	Data any

	// Result is set for PostGetResult.
	Result Result

	// View is set for PreBuildView and PostBuildView.
	View *View

	// Duration is the driver execution time for PostGetResult.
	Duration time.Duration

	// Err is the failure being reported to PostGetResult and PostBindParameters
	// hooks, if any. Hooks observe it but cannot clear it.
	Err error
}

// HookFunc is a lifecycle callback.
type HookFunc func(ctx context.Context, e *HookEvent) error

// Hook binds a callback to an event. Hooks run synchronously, higher
// Priority first; equal priorities run in registration order.
type Hook struct {
	Name     string
	Event    Event
	Priority int
	Fn       HookFunc
}

// Extension contributes lifecycle hooks to data sources.
type Extension interface {
	Name() string
	Hooks() []Hook
}

// FieldTypeProvider is implemented by extensions that contribute field types
// at the data source level. They take precedence over the driver's types.
type FieldTypeProvider interface {
	FieldTypes() []FieldType
}

type registeredHook struct {
	Hook
	extension string
	seq       int
}

type hookRegistry struct {
	hooks map[Event][]registeredHook
	seq   int
}

func (r *hookRegistry) add(extension string, hooks ...Hook) {
	if r.hooks == nil {
		r.hooks = map[Event][]registeredHook{}
	}
	for _, h := range hooks {
		if h.Fn == nil {
			continue
		}
		r.seq++
		list := append(r.hooks[h.Event], registeredHook{Hook: h, extension: extension, seq: r.seq})
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Priority != list[j].Priority {
				return list[i].Priority > list[j].Priority
			}
			return list[i].seq < list[j].seq
		})
		r.hooks[h.Event] = list
	}
}

func (r *hookRegistry) dispatch(ctx context.Context, e *HookEvent) error {
	for _, h := range r.hooks[e.Event] {
		if err := h.Fn(ctx, e); err != nil {
			return errors.Wrapf(err, "%s hook %s/%s", e.Event, h.extension, h.Name)
		}
	}
	return nil
}
