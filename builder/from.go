package builder

import (
	"log/slog"
	"reflect"
)

// From returns the value configured at path, read as V. It is meant for
// constructor functions: a value read while the constructor runs is not
// assigned again when Build applies the remaining values.
//
// If the path was not configured From returns the zero V and no error.
// A configured branch (e.g. "x.Address" when only "x.Address.City" was set)
// is returned as a freshly built instance holding its configured values.
//
//	func newOrder(b *builder.Builder[Order]) (*Order, error) {
//		id, err := builder.From[string](b, "o.ID")
//		...
//	}
func From[V any, T any](b *Builder[T], path string) (V, error) {
	var zero V
	v, found, err := b.from(path, reflect.TypeFor[V]())
	if err != nil || !found {
		return zero, err
	}
	return valueAs[V](v), nil
}

// FromOr is From returning def when path was not configured.
func FromOr[V any, T any](b *Builder[T], path string, def V) (V, error) {
	v, found, err := b.from(path, reflect.TypeFor[V]())
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	return valueAs[V](v), nil
}

// FromOrBuild is From building def when path was not configured. The built
// *D is read as V, so V may be either *D or D.
func FromOrBuild[V any, T any, D any](b *Builder[T], path string, def *Builder[D]) (V, error) {
	var zero V
	want := reflect.TypeFor[V]()
	v, found, err := b.from(path, want)
	if err != nil {
		return zero, err
	}
	if found {
		return valueAs[V](v), nil
	}
	if def == nil {
		return zero, nil
	}

	built, err := def.Build()
	if err != nil {
		return zero, err
	}
	out, ok := adaptValue(reflect.ValueOf(built), want)
	if !ok {
		return zero, TypeMismatchError{Path: path, Want: want, Got: reflect.TypeOf(built)}
	}
	return valueAs[V](out), nil
}

// from walks path without creating nodes. found is false when the path does
// not fully resolve.
func (b *Builder[T]) from(path string, want reflect.Type) (reflect.Value, bool, error) {
	if b == nil {
		return reflect.Value{}, false, ErrNilBuilder
	}
	segments, err := Decompose(path)
	if err != nil {
		return reflect.Value{}, false, err
	}
	visited, ok := b.tree.walk(segments)
	if !ok {
		return reflect.Value{}, false, nil
	}

	leaf := visited[len(visited)-1]
	v, err := b.tree.applyToConstructor(leaf, b.inConstructor)
	if err != nil {
		return reflect.Value{}, false, err
	}
	if b.inConstructor {
		for _, idx := range visited {
			b.tree.nodes[idx].usedByConstructor = true
		}
		b.log.Debug("read by constructor", slog.String("path", formatPath(segments)))
	}

	out, ok := adaptValue(v, want)
	if !ok {
		return reflect.Value{}, false, TypeMismatchError{Path: formatPath(segments), Want: want, Got: typeOfValue(v)}
	}
	return out, true, nil
}

// valueAs unwraps v; a nil interface yields the zero V.
func valueAs[V any](v reflect.Value) V {
	out, _ := v.Interface().(V)
	return out
}
