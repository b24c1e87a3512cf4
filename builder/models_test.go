package builder_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Fixture types shared by the builder tests.

type Address struct {
	Street string
	City   string
}

type Customer struct {
	Name    string
	Email   string
	Address *Address
	Tier    int
}

type Line struct {
	SKU   string
	Qty   int
	Attrs map[string]string
}

type Order struct {
	ID       string
	Status   string
	Priority int
	Customer Customer
	Shipping *Address
	Lines    []Line
	Tags     []string
	Labels   map[string]string
	Notes    map[int]*Line
	Matrix   [2]int

	secret string // unexported, never reachable through a path
}

// Shape has no zero value that could be populated.
type Shape interface {
	Area() float64
}

// Conn refuses zero-value construction.
type Conn struct {
	DSN  string
	Pool int
}

func (*Conn) ConstructorRequired() {}

// with checks the result of a configuration call:
//
//	with(t)(b.With("x.ID", "o-1"))
func with(t *testing.T) func(any, error) {
	return func(_ any, err error) {
		t.Helper()
		require.NoError(t, err)
	}
}

// counter returns a producer that counts its invocations.
func counter(value any) (func() any, *int) {
	calls := 0
	return func() any {
		calls++
		return value
	}, &calls
}
