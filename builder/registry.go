package builder

import (
	"fmt"
	"reflect"
	"sync"
)

// HookKind selects which per-type hook a Store lookup asks for.
type HookKind uint8

const (
	// ConstructorHook yields a ConstructorFunc[T].
	ConstructorHook HookKind = iota + 1

	// PostBuildHook yields a PostBuildFunc[T].
	PostBuildHook
)

// String implements fmt.Stringer.
func (k HookKind) String() string {
	switch k {
	case ConstructorHook:
		return "constructor"
	case PostBuildHook:
		return "post-build action"
	}
	return "hook(" + fmt.Sprint(uint8(k)) + ")"
}

// ConstructorFunc creates the root instance for a Builder. It may call From
// on b to consume values configured for the instance.
type ConstructorFunc[T any] func(b *Builder[T]) (*T, error)

// PostBuildFunc runs after all pending values were applied.
type PostBuildFunc[T any] func(v *T) error

// Store supplies per-type construction hooks to builders.
//
// It is intentionally:
// - read-only from the builder's point of view
// - keyed by an explicit type identifier (reflect.Type)
//
// A Builder performs one ConstructorHook and one PostBuildHook lookup per
// Build call unless the corresponding hook was supplied as an option.
type Store interface {
	Lookup(kind HookKind, key reflect.Type) (hook any, ok bool, err error)
}

type hookKey struct {
	kind HookKind
	typ  reflect.Type
}

// Registry is an in-memory Store. It is safe for concurrent use, so one
// registry can serve builders on many goroutines.
type Registry struct {
	mu    sync.RWMutex
	hooks map[hookKey]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{hooks: map[hookKey]any{}}
}

// Provide stores a hook under (kind, key) and returns the registry for
// chaining. Prefer the typed RegisterConstructor and RegisterPostBuild.
func (r *Registry) Provide(kind HookKind, key reflect.Type, hook any) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[hookKey{kind: kind, typ: key}] = hook
	return r
}

// Lookup implements Store.
func (r *Registry) Lookup(kind HookKind, key reflect.Type) (any, bool, error) {
	if r == nil {
		return nil, false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	hook, ok := r.hooks[hookKey{kind: kind, typ: key}]
	return hook, ok, nil
}

// RegisterConstructor registers fn as the constructor for T.
func RegisterConstructor[T any](r *Registry, fn ConstructorFunc[T]) *Registry {
	return r.Provide(ConstructorHook, TypeKey[T](), fn)
}

// RegisterPostBuild registers fn as the post-build action for T.
func RegisterPostBuild[T any](r *Registry, fn PostBuildFunc[T]) *Registry {
	return r.Provide(PostBuildHook, TypeKey[T](), fn)
}

// TypeKey returns the registry key for T.
func TypeKey[T any]() reflect.Type { return reflect.TypeFor[T]() }

// lookup queries s and converts panics into errors.
func lookup(s Store, kind HookKind, key reflect.Type) (hook any, ok bool, err error) {
	if s == nil {
		return nil, false, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			hook, ok = nil, false
			err = fmt.Errorf("%w: %v", ErrRegistryPanic, rec)
		}
	}()
	return s.Lookup(kind, key)
}

func lookupConstructor[T any](s Store) (ConstructorFunc[T], error) {
	key := TypeKey[T]()
	hook, ok, err := lookup(s, ConstructorHook, key)
	if err != nil || !ok || hook == nil {
		return nil, err
	}
	switch fn := hook.(type) {
	case ConstructorFunc[T]:
		return fn, nil
	case func(*Builder[T]) (*T, error):
		return fn, nil
	}
	return nil, WrongHookTypeError{Kind: ConstructorHook, Type: key, GotType: reflect.TypeOf(hook).String()}
}

func lookupPostBuild[T any](s Store) (PostBuildFunc[T], error) {
	key := TypeKey[T]()
	hook, ok, err := lookup(s, PostBuildHook, key)
	if err != nil || !ok || hook == nil {
		return nil, err
	}
	switch fn := hook.(type) {
	case PostBuildFunc[T]:
		return fn, nil
	case func(*T) error:
		return fn, nil
	}
	return nil, WrongHookTypeError{Kind: PostBuildHook, Type: key, GotType: reflect.TypeOf(hook).String()}
}
