package builder

import "log/slog"

// Option configures a Builder at construction time.
type Option[T any] func(*Builder[T])

// Constructor overrides the constructor registered for T in the Store.
func Constructor[T any](fn ConstructorFunc[T]) Option[T] {
	return func(b *Builder[T]) { b.ctor = fn }
}

// PostBuild overrides the post-build action registered for T in the Store.
func PostBuild[T any](fn PostBuildFunc[T]) Option[T] {
	return func(b *Builder[T]) { b.post = fn }
}

// Logger sets the logger used for debug output. Builders log nothing by default.
func Logger[T any](l *slog.Logger) Option[T] {
	return func(b *Builder[T]) {
		if l != nil {
			b.log = l
		}
	}
}

// ValueOption adjusts how a single configured value is applied.
type ValueOption func(*valueConfig)

type valueConfig struct {
	allowDefaults bool
}

// SkipDefaults makes the assignment conditional: if the value equals the
// zero value of the target type the field keeps whatever the constructor
// put there.
func SkipDefaults() ValueOption {
	return func(c *valueConfig) { c.allowDefaults = false }
}

func valueConfigFor(opts []ValueOption) valueConfig {
	cfg := valueConfig{allowDefaults: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
