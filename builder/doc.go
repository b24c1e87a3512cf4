// Package builder assembles populated object graphs from incrementally
// configured path expressions.
//
// A Builder[T] records pending values against paths written in Go selector
// syntax, rooted at an arbitrary identifier that stands for the T being
// built:
//
//	b := builder.New[Order](reg)
//	b.With("o.Customer.Name", "Ada")
//	b.With("o.Lines[0].SKU", "BOOK-1")
//	b.WithFunc("o.ID", func() any { return uuid.New() })
//	order, err := b.Build()
//
// Paths are checked against T when they are configured, so a typo in a
// field name or a value of the wrong type fails at the With call, not at
// Build. Intermediate structs, pointers, maps and slice slots are created on
// demand when the values are applied.
//
// Design goals:
//   - One pass: values are collected in a tree mirroring the paths and
//     applied to the instance in a single walk on Build.
//   - Lazy producers: WithFunc and WithBuilderFunc run once per Build, when
//     their value is applied, never at configuration time.
//   - Constructor cooperation: a constructor function (passed with the
//     Constructor option or registered in a Store) can read configured values
//     through From; those values are not assigned a second time.
//   - Explicit registry: per-type constructors and post-build actions live in
//     a Store passed to New, keyed by reflect.Type.
//
// Supported path shapes are member access (x.A.B) and index access with a
// literal argument (x.Items[0], x.Labels["env"]). Method calls, arithmetic,
// conversions and any other expression form are rejected with
// UnsupportedExpressionError. Keys are compared by value, so x.Items[0x1]
// and x.Items[1] name the same slot. Slice indices are limited to
// MaxSliceIndex. The cmd/pathgen generator emits path constants
// for a struct so paths can be referenced without string literals.
//
// Builders are single-goroutine objects. Each Build starts from a fresh
// instance: producers run again and values consumed by the constructor in
// an earlier Build are eligible again.
package builder
