package builder_test

import (
	"testing"

	"github.com/sghaida/objb/builder"
	"github.com/stretchr/testify/assert"
)

func TestDump(t *testing.T) {
	t.Parallel()

	b := builder.New[Order](nil)
	with(t)(b.With("x.ID", "o-1"))
	with(t)(b.With("x.Priority", 0, builder.SkipDefaults()))
	with(t)(b.WithFunc("x.Status", func() any { return "open" }))
	with(t)(b.WithBuilderFunc("x.Customer.Name", func(*builder.Builder[Order]) (any, error) { return "Ada", nil }))
	with(t)(b.With("x.Lines[0].Qty", 2))

	want := "builder_test.Order\n" +
		"  Customer.Name = <builder func>\n" +
		"  ID = o-1\n" +
		"  Lines[0].Qty = 2\n" +
		"  Priority = 0 (skip defaults)\n" +
		"  Status = <func>\n"
	assert.Equal(t, want, b.Dump())
}

func TestDump_NilBuilder(t *testing.T) {
	t.Parallel()

	var b *builder.Builder[Order]
	assert.Empty(t, b.Dump())
}
