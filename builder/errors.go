package builder

import (
	"errors"
	"reflect"
	"strconv"
)

var (
	// ErrNilBuilder is returned when an operation is invoked on a nil Builder.
	ErrNilBuilder = errors.New("builder: nil builder")

	// ErrBuildInProgress is returned when configuration is attempted while
	// Build is running (for example from inside a producer).
	ErrBuildInProgress = errors.New("builder: configuration while build in progress")

	// ErrNilProducer is returned when a nil function is configured as a producer.
	ErrNilProducer = errors.New("builder: nil producer")

	// ErrNilInstance is returned when a constructor function returns a nil instance.
	ErrNilInstance = errors.New("builder: constructor returned nil instance")

	// ErrRegistryPanic is returned if a Store implementation panics during Lookup.
	ErrRegistryPanic = errors.New("builder: panic during registry lookup")

	// ErrProducerCycle is returned when a producer reads its own path,
	// directly or through other producers, while it is being resolved.
	ErrProducerCycle = errors.New("builder: producer depends on its own value")
)

// UnsupportedExpressionError is returned when a path expression contains a
// node other than member access, index access or the root identifier.
type UnsupportedExpressionError struct {
	// Node is the kind of the offending syntax node, e.g. "CallExpr".
	Node string

	// Expr is the full expression text as supplied by the caller.
	Expr string
}

// Error implements the error interface.
func (e UnsupportedExpressionError) Error() string {
	// Example: builder: unsupported expression node CallExpr in "x.Name()"
	return "builder: unsupported expression node " + e.Node + " in " + strconv.Quote(e.Expr)
}

// InvalidPathError is returned when a path expression cannot be parsed or
// does not describe at least one hop from the root.
type InvalidPathError struct {
	Expr   string
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e InvalidPathError) Error() string {
	msg := "builder: invalid path " + strconv.Quote(e.Expr) + ": " + e.Reason
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying parse error, if any.
func (e InvalidPathError) Unwrap() error { return e.Cause }

// PathConflictError is returned when a path already holds a branch but is
// configured as a value, or vice versa.
type PathConflictError struct {
	// Path is the dotted path of the conflicting node.
	Path string

	// Existing is "branch" or "value".
	Existing string
}

// Error implements the error interface.
func (e PathConflictError) Error() string {
	// Example: builder: path "Address" already configured as value
	return "builder: path " + strconv.Quote(e.Path) + " already configured as " + e.Existing
}

// UnknownMemberError is returned when a path names a field the target type
// does not have, or one that cannot be set from outside its package.
type UnknownMemberError struct {
	Type   reflect.Type
	Member string
}

// Error implements the error interface.
func (e UnknownMemberError) Error() string {
	return "builder: type " + typeName(e.Type) + " has no settable member " + strconv.Quote(e.Member)
}

// TypeMismatchError is returned when a configured or produced value cannot
// be stored in (or read as) the requested type.
type TypeMismatchError struct {
	Path string
	Want reflect.Type
	Got  reflect.Type
}

// Error implements the error interface.
func (e TypeMismatchError) Error() string {
	return "builder: path " + strconv.Quote(e.Path) + " wants " + typeName(e.Want) + ", got " + typeName(e.Got)
}

// NoParameterlessConstructorError is returned by Build when no constructor
// function is available and the target type cannot be built from its zero value.
type NoParameterlessConstructorError struct {
	Type reflect.Type
}

// Error implements the error interface.
func (e NoParameterlessConstructorError) Error() string {
	return "builder: type " + typeName(e.Type) +
		" has no parameterless constructor; register a constructor function with RegisterConstructor or the Constructor option"
}

// WrongHookTypeError is returned when a Store yields a hook whose function
// signature does not match the type being built.
type WrongHookTypeError struct {
	Kind    HookKind
	Type    reflect.Type
	GotType string
}

// Error implements the error interface.
func (e WrongHookTypeError) Error() string {
	return "builder: " + e.Kind.String() + " for " + typeName(e.Type) + " has wrong type (" + e.GotType + ")"
}

// ProducerError wraps an error returned by a builder-parameterized producer.
type ProducerError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e ProducerError) Error() string {
	return "builder: producer for " + strconv.Quote(e.Path) + " failed: " + e.Cause.Error()
}

// Unwrap returns the producer's error.
func (e ProducerError) Unwrap() error { return e.Cause }

// FixtureError is returned by WithYAML when a fixture document or one of
// its entries cannot be decoded.
type FixtureError struct {
	Path  string
	Line  int
	Cause error
}

// Error implements the error interface.
func (e FixtureError) Error() string {
	msg := "builder: fixture"
	if e.Path != "" {
		msg += " entry " + strconv.Quote(e.Path)
	}
	if e.Line > 0 {
		msg += " (line " + strconv.Itoa(e.Line) + ")"
	}
	return msg + ": " + e.Cause.Error()
}

// Unwrap returns the decoding or configuration error.
func (e FixtureError) Unwrap() error { return e.Cause }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
