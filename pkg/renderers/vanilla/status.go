package vanilla

import (
	"fmt"
	"reflect"
	"sort"
)

// Status is exported under the status variable of a tpl:each iteration.
type Status struct {
	Index int
	// Count is Index plus one.
	Count   int
	Size    int
	First   bool
	Last    bool
	Even    bool
	Odd     bool
	Current any
	// PropertyPath is the submission name prefix of the current item, such
	// as "items[2]".
	PropertyPath string
}

func newStatus(index, size int, current any, path string) *Status {
	return &Status{
		Index:        index,
		Count:        index + 1,
		Size:         size,
		First:        index == 0,
		Last:         index == size-1,
		Even:         (index+1)%2 == 0,
		Odd:          (index+1)%2 == 1,
		Current:      current,
		PropertyPath: path,
	}
}

// Entry is the item type when iterating a map.
type Entry struct {
	Key   any
	Value any
}

// iterate expands an evaluated iterable. Slices and arrays yield their
// elements, maps yield entries ordered by key, nil yields nothing and any
// other value is iterated once.
func iterate(value any) []any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		if elem := rv.Elem(); elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array || elem.Kind() == reflect.Map {
			rv = elem
			continue
		}
		return []any{value}
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		out := make([]any, 0, len(keys))
		for _, key := range keys {
			out = append(out, Entry{Key: key.Interface(), Value: rv.MapIndex(key).Interface()})
		}
		return out
	}
	return []any{value}
}
