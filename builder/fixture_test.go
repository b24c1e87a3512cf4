package builder_test

import (
	"testing"

	"github.com/sghaida/objb/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithYAML(t *testing.T) {
	t.Parallel()

	doc := []byte(`
x.ID: o-7
x.Priority: 3
x.Customer.Name: Ada
x.Customer.Address.City: Oslo
x.Tags: [a, b]
'x.Labels["env"]': prod
x.Lines[0].SKU: BOOK-1
x.Shipping:
  street: Main
  city: Bergen
`)

	b := builder.New[Order](nil)
	with(t)(b.WithYAML(doc))

	o, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "o-7", o.ID)
	assert.Equal(t, 3, o.Priority)
	assert.Equal(t, "Ada", o.Customer.Name)
	require.NotNil(t, o.Customer.Address)
	assert.Equal(t, "Oslo", o.Customer.Address.City)
	assert.Equal(t, []string{"a", "b"}, o.Tags)
	assert.Equal(t, map[string]string{"env": "prod"}, o.Labels)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, "BOOK-1", o.Lines[0].SKU)
	assert.Equal(t, &Address{Street: "Main", City: "Bergen"}, o.Shipping)
}

func TestWithYAML_MixesWithCalls(t *testing.T) {
	t.Parallel()

	b := builder.New[Order](nil)
	with(t)(b.With("x.Status", "open"))
	with(t)(b.WithYAML([]byte("x.Status: closed\n")))
	with(t)(b.With("x.ID", "o-1"))

	o, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "closed", o.Status)
	assert.Equal(t, "o-1", o.ID)
}

func TestWithYAML_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown member", func(t *testing.T) {
		t.Parallel()

		b := builder.New[Order](nil)
		_, err := b.WithYAML([]byte("x.ID: o-1\nx.Nope: 1\nx.Status: open\n"))

		var fixture builder.FixtureError
		require.ErrorAs(t, err, &fixture)
		assert.Equal(t, "x.Nope", fixture.Path)
		assert.Equal(t, 2, fixture.Line)

		var unknown builder.UnknownMemberError
		require.ErrorAs(t, err, &unknown)

		// entries before the failing one were applied, later ones were not
		assert.Equal(t, []string{"ID"}, b.Paths())
	})

	t.Run("value does not decode", func(t *testing.T) {
		t.Parallel()

		b := builder.New[Order](nil)
		_, err := b.WithYAML([]byte("x.Priority: high\n"))

		var fixture builder.FixtureError
		require.ErrorAs(t, err, &fixture)
		assert.Equal(t, "x.Priority", fixture.Path)
		assert.Contains(t, err.Error(), `fixture entry "x.Priority" (line 1)`)
	})

	t.Run("not a mapping", func(t *testing.T) {
		t.Parallel()

		b := builder.New[Order](nil)
		_, err := b.WithYAML([]byte("- x.ID\n- x.Status\n"))

		var fixture builder.FixtureError
		require.ErrorAs(t, err, &fixture)
		assert.Contains(t, err.Error(), "mapping")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		b := builder.New[Order](nil)
		_, err := b.WithYAML([]byte("x.ID: [unclosed\n"))

		var fixture builder.FixtureError
		require.ErrorAs(t, err, &fixture)
		assert.Empty(t, fixture.Path)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		b := builder.New[Order](nil)
		_, err := b.WithYAML(nil)
		require.NoError(t, err)
		assert.Empty(t, b.Paths())
	})
}
