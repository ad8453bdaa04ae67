package collection

import (
	"database/sql/driver"
	"reflect"
	"strings"
	"sync"

	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"
)

// ErrUnknownMember is returned when a column path does not resolve on an item.
var ErrUnknownMember = errors.New("unknown member")

type memberKey struct {
	typ  reflect.Type
	name string
}

// member locates a struct field by index or a getter method by name.
type member struct {
	field  []int
	method string
}

var members sync.Map // memberKey -> member

// resolve walks a dotted column path through structs, maps and getter
// methods. Nil pointers and missing map keys yield nil. Values implementing
// driver.Valuer (null.String, null.Time, ...) are unwrapped.
func resolve(item reflect.Value, path string) (any, error) {
	v := item
	for _, segment := range strings.Split(path, ".") {
		v = indirect(v)
		if !v.IsValid() {
			return nil, nil
		}

		switch v.Kind() {
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return nil, errors.Wrapf(ErrUnknownMember, "%s: map keys are not strings", path)
			}
			v = v.MapIndex(reflect.ValueOf(segment).Convert(v.Type().Key()))
			if !v.IsValid() {
				return nil, nil
			}
		case reflect.Struct:
			next, err := structMember(v, segment)
			if err != nil {
				return nil, errors.Wrapf(err, "%s", path)
			}
			v = next
		default:
			return nil, errors.Wrapf(ErrUnknownMember, "%s: cannot read %q from %s", path, segment, v.Type())
		}
	}
	return unwrap(v), nil
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func unwrap(v reflect.Value) any {
	v = indirect(v)
	if !v.IsValid() {
		return nil
	}
	out := v.Interface()
	if valuer, ok := out.(driver.Valuer); ok {
		if val, err := valuer.Value(); err == nil {
			return val
		}
	}
	return out
}

func structMember(v reflect.Value, name string) (reflect.Value, error) {
	key := memberKey{typ: v.Type(), name: name}
	m, ok := members.Load(key)
	if !ok {
		found, err := lookupMember(v.Type(), name)
		if err != nil {
			return reflect.Value{}, err
		}
		m, _ = members.LoadOrStore(key, found)
	}

	mem := m.(member)
	if mem.method == "" {
		return v.FieldByIndex(mem.field), nil
	}

	method := v.MethodByName(mem.method)
	if !method.IsValid() && v.CanAddr() {
		method = v.Addr().MethodByName(mem.method)
	}
	if !method.IsValid() {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		method = ptr.MethodByName(mem.method)
	}
	out := method.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return reflect.Value{}, errors.Wrapf(out[1].Interface().(error), "%s()", mem.method)
	}
	return out[0], nil
}

// lookupMember resolves name on a struct type by exact field name, then by
// boil, db or json tag, then by the TitleCase form of the name, then by a
// case-insensitive match, then by a Get<Name> or <Name> getter method.
func lookupMember(t reflect.Type, name string) (member, error) {
	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		return member{field: f.Index}, nil
	}

	fields := reflect.VisibleFields(t)
	for _, tag := range []string{"boil", "db", "json"} {
		for _, f := range fields {
			if !f.IsExported() {
				continue
			}
			if tagName, _, _ := strings.Cut(f.Tag.Get(tag), ","); tagName == name {
				return member{field: f.Index}, nil
			}
		}
	}

	title := strmangle.TitleCase(name)
	if f, ok := t.FieldByName(title); ok && f.IsExported() {
		return member{field: f.Index}, nil
	}
	for _, f := range fields {
		if f.IsExported() && strings.EqualFold(f.Name, name) {
			return member{field: f.Index}, nil
		}
	}

	ptr := reflect.PointerTo(t)
	for _, candidate := range []string{"Get" + title, title} {
		method, ok := ptr.MethodByName(candidate)
		if !ok || !isGetter(method.Type) {
			continue
		}
		return member{method: candidate}, nil
	}
	return member{}, errors.Wrapf(ErrUnknownMember, "%s has no member %q", t, name)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// isGetter reports whether a method (receiver included) takes no arguments
// and returns a value, optionally followed by an error.
func isGetter(t reflect.Type) bool {
	if t.NumIn() != 1 {
		return false
	}
	switch t.NumOut() {
	case 1:
		return true
	case 2:
		return t.Out(1).Implements(errorType)
	}
	return false
}
