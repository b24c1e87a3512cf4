package builder

import (
	"log/slog"
	"reflect"
)

// State is the lifecycle position of a Builder.
type State uint8

const (
	// Configuring accepts With calls; the pending tree is mutable.
	Configuring State = iota

	// Building is set for the duration of Build.
	Building

	// Built means the last Build succeeded. Further configuration is allowed
	// and the next Build starts from a fresh instance.
	Built
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Configuring:
		return "configuring"
	case Building:
		return "building"
	case Built:
		return "built"
	}
	return "unknown"
}

// ConstructorRequired marks types whose zero value is not a usable
// instance. Build refuses to create such types without a constructor.
type ConstructorRequired interface {
	ConstructorRequired()
}

// BuilderFunc produces a value at build time with access to the builder,
// typically to read other pending values through From.
type BuilderFunc[T any] func(b *Builder[T]) (any, error)

var discardLogger = slog.New(slog.DiscardHandler)

// Builder accumulates pending values for a T and materialises it on Build.
//
// A Builder is not safe for concurrent use.
type Builder[T any] struct {
	store Store
	ctor  ConstructorFunc[T]
	post  PostBuildFunc[T]
	log   *slog.Logger

	tree          *tree
	state         State
	inConstructor bool
}

// New creates a Builder for T. store may be nil when no registered hooks
// are needed.
func New[T any](store Store, opts ...Option[T]) *Builder[T] {
	b := &Builder[T]{store: store, log: discardLogger}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.tree = newTree(TypeKey[T](), b.log)
	return b
}

// State reports where the builder is in its lifecycle.
func (b *Builder[T]) State() State { return b.state }

// With configures a literal value at path, e.g. b.With("x.Address.City", "Oslo").
//
// The value must be assignable or convertible to the target field type.
// Configuring the same path again replaces the earlier value.
func (b *Builder[T]) With(path string, value any, opts ...ValueOption) (*Builder[T], error) {
	if b == nil {
		return nil, ErrNilBuilder
	}
	cfg := valueConfigFor(opts)
	err := b.set(path, cfg.allowDefaults, func(label string, typ reflect.Type) (producer, error) {
		rv := reflect.ValueOf(value)
		v, ok := convertValue(rv, typ)
		if !ok {
			return producer{}, TypeMismatchError{Path: label, Want: typ, Got: typeOfValue(rv)}
		}
		return producer{kind: literalProducer, literal: v}, nil
	})
	return b, err
}

// WithItems configures a slice or array at path from its elements.
func (b *Builder[T]) WithItems(path string, items ...any) (*Builder[T], error) {
	if b == nil {
		return nil, ErrNilBuilder
	}
	err := b.set(path, true, func(label string, typ reflect.Type) (producer, error) {
		v, ok := convertItems(items, typ)
		if !ok {
			return producer{}, TypeMismatchError{Path: label, Want: typ, Got: reflect.TypeOf(items)}
		}
		return producer{kind: literalProducer, literal: v}, nil
	})
	return b, err
}

// WithFunc configures a producer invoked once per Build, when the value is
// applied. Its result is always assigned, even if it is a zero value.
func (b *Builder[T]) WithFunc(path string, fn func() any) (*Builder[T], error) {
	if b == nil {
		return nil, ErrNilBuilder
	}
	if fn == nil {
		return b, ErrNilProducer
	}
	err := b.set(path, true, func(string, reflect.Type) (producer, error) {
		return producer{kind: funcProducer, fn: fn}, nil
	})
	return b, err
}

// WithBuilderFunc configures a producer that receives the builder itself.
func (b *Builder[T]) WithBuilderFunc(path string, fn BuilderFunc[T], opts ...ValueOption) (*Builder[T], error) {
	if b == nil {
		return nil, ErrNilBuilder
	}
	if fn == nil {
		return b, ErrNilProducer
	}
	cfg := valueConfigFor(opts)
	err := b.set(path, cfg.allowDefaults, func(string, reflect.Type) (producer, error) {
		return producer{kind: builderFuncProducer, builderFn: func() (any, error) { return fn(b) }}, nil
	})
	return b, err
}

// WithAll applies steps in order and stops at the first error.
func (b *Builder[T]) WithAll(steps ...Step) (*Builder[T], error) {
	if b == nil {
		return nil, ErrNilBuilder
	}
	for _, step := range steps {
		if step == nil {
			continue
		}
		if err := step.apply(b); err != nil {
			return b, err
		}
	}
	return b, nil
}

// set decomposes path, checks it against T and the existing tree, then
// stores the producer made by mk at the leaf. Nothing is mutated on error.
func (b *Builder[T]) set(path string, allowDefaults bool, mk func(label string, typ reflect.Type) (producer, error)) error {
	if b.state == Building {
		return ErrBuildInProgress
	}

	segments, err := Decompose(path)
	if err != nil {
		return err
	}
	typ, err := b.tree.typeAt(segments)
	if err != nil {
		return err
	}
	if err := b.tree.checkConflicts(segments); err != nil {
		return err
	}
	p, err := mk(formatPath(segments), typ)
	if err != nil {
		return err
	}

	parent := rootIndex
	for _, seg := range segments[:len(segments)-1] {
		if parent, err = b.tree.addOrGetBranch(parent, seg); err != nil {
			return err
		}
	}
	if _, err := b.tree.addOrGetValue(parent, segments[len(segments)-1], p, allowDefaults); err != nil {
		return err
	}

	b.log.Debug("configured", slog.String("path", formatPath(segments)), slog.Bool("allowDefaults", allowDefaults))
	return nil
}

// Has reports whether a value or branch is configured at path.
func (b *Builder[T]) Has(path string) bool {
	if b == nil {
		return false
	}
	segments, err := Decompose(path)
	if err != nil {
		return false
	}
	_, ok := b.tree.walk(segments)
	return ok
}

// Paths lists every configured value path, sorted, without the root
// identifier (e.g. "Customer.Address.City").
func (b *Builder[T]) Paths() []string {
	if b == nil {
		return nil
	}
	return b.tree.valuePaths()
}

// Build constructs a T, applies every pending value and runs the post-build
// action.
//
// Construction uses, in order: the Constructor option, the constructor
// registered in the Store, or the zero value of T. Values read by the
// constructor through From are not assigned a second time.
func (b *Builder[T]) Build() (*T, error) {
	if b == nil {
		return nil, ErrNilBuilder
	}
	if b.state == Building {
		return nil, ErrBuildInProgress
	}

	b.state = Building
	b.tree.reset()

	// Configuring unless build returns cleanly, including when a hook panics.
	final := Configuring
	defer func() { b.state = final }()

	instance, err := b.build()
	if err != nil {
		return nil, err
	}
	final = Built
	return instance, nil
}

// MustBuild is Build that panics on error.
func (b *Builder[T]) MustBuild() *T {
	v, err := b.Build()
	if err != nil {
		panic(err)
	}
	return v
}

func (b *Builder[T]) build() (*T, error) {
	key := TypeKey[T]()
	b.log.Debug("build started", slog.String("type", key.String()))

	instance, err := b.construct(key)
	if err != nil {
		return nil, err
	}

	if err := b.tree.applyToInstance(rootIndex, reflect.ValueOf(instance).Elem(), true); err != nil {
		return nil, err
	}

	post := b.post
	if post == nil {
		if post, err = lookupPostBuild[T](b.store); err != nil {
			return nil, err
		}
	}
	if post != nil {
		if err := post(instance); err != nil {
			return nil, err
		}
	}

	b.log.Debug("build finished", slog.String("type", key.String()))
	return instance, nil
}

func (b *Builder[T]) construct(key reflect.Type) (*T, error) {
	ctor := b.ctor
	if ctor == nil {
		var err error
		if ctor, err = lookupConstructor[T](b.store); err != nil {
			return nil, err
		}
	}

	if ctor == nil {
		if !zeroConstructible(key) {
			return nil, NoParameterlessConstructorError{Type: key}
		}
		return new(T), nil
	}

	b.inConstructor = true
	defer func() { b.inConstructor = false }()

	instance, err := ctor(b)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, ErrNilInstance
	}
	return instance, nil
}

var constructorRequiredType = reflect.TypeFor[ConstructorRequired]()

func zeroConstructible(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	}
	return !t.Implements(constructorRequiredType) && !reflect.PointerTo(t).Implements(constructorRequiredType)
}
