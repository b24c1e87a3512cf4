package builder

import "reflect"

// configurer is the non-generic view of a Builder used by steps.
type configurer interface {
	rootType() reflect.Type
	setLiteral(path string, value any, opts []ValueOption) error
	setItems(path string, items []any) error
	setFunc(path string, fn func() any) error
}

// Step is one deferred configuration call, applied by WithAll.
type Step interface {
	apply(c configurer) error
}

type stepFunc func(c configurer) error

func (f stepFunc) apply(c configurer) error { return f(c) }

// Set is the WithAll form of With.
func Set(path string, value any, opts ...ValueOption) Step {
	return stepFunc(func(c configurer) error { return c.setLiteral(path, value, opts) })
}

// SetItems is the WithAll form of WithItems.
func SetItems(path string, items ...any) Step {
	return stepFunc(func(c configurer) error { return c.setItems(path, items) })
}

// SetFunc is the WithAll form of WithFunc.
func SetFunc(path string, fn func() any) Step {
	return stepFunc(func(c configurer) error { return c.setFunc(path, fn) })
}

// SetBuilderFunc is the WithAll form of WithBuilderFunc. Applied to a
// builder of a type other than T it fails with a TypeMismatchError.
func SetBuilderFunc[T any](path string, fn BuilderFunc[T], opts ...ValueOption) Step {
	return stepFunc(func(c configurer) error {
		b, ok := c.(*Builder[T])
		if !ok {
			return TypeMismatchError{Path: path, Want: c.rootType(), Got: TypeKey[T]()}
		}
		_, err := b.WithBuilderFunc(path, fn, opts...)
		return err
	})
}

func (b *Builder[T]) rootType() reflect.Type { return TypeKey[T]() }

func (b *Builder[T]) setLiteral(path string, value any, opts []ValueOption) error {
	_, err := b.With(path, value, opts...)
	return err
}

func (b *Builder[T]) setItems(path string, items []any) error {
	_, err := b.WithItems(path, items...)
	return err
}

func (b *Builder[T]) setFunc(path string, fn func() any) error {
	_, err := b.WithFunc(path, fn)
	return err
}
