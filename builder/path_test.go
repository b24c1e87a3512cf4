package builder_test

import (
	"testing"

	"github.com/sghaida/objb/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompose(t *testing.T) {
	t.Parallel()

	cases := []struct {
		expr  string
		names []string
		args  [][]any
	}{
		{expr: "x.Name", names: []string{"Name"}},
		{expr: "x.A.B.C", names: []string{"A", "B", "C"}},
		{expr: "x.Items[0]", names: []string{"Items", "Item[0]"}, args: [][]any{nil, {int64(0)}}},
		{expr: "x.Items[1].Qty", names: []string{"Items", "Item[1]", "Qty"}, args: [][]any{nil, {int64(1)}, nil}},
		{expr: `x.Labels["env"]`, names: []string{"Labels", `Item["env"]`}, args: [][]any{nil, {"env"}}},
		{expr: "x.Grid[1][2]", names: []string{"Grid", "Item[1]", "Item[2]"}, args: [][]any{nil, {int64(1)}, {int64(2)}}},
		{expr: "x.Offsets[-3]", names: []string{"Offsets", "Item[-3]"}, args: [][]any{nil, {int64(-3)}}},
		{expr: "x.Weights[0.5]", names: []string{"Weights", "Item[0.5]"}, args: [][]any{nil, {0.5}}},
		{expr: "x.Flags[true]", names: []string{"Flags", "Item[true]"}, args: [][]any{nil, {true}}},
		{expr: "x.Runes['a']", names: []string{"Runes", "Item['a']"}, args: [][]any{nil, {'a'}}},
		{expr: "x.Hex[0x10]", names: []string{"Hex", "Item[16]"}, args: [][]any{nil, {int64(16)}}},
		{expr: "x.Raw[`env`]", names: []string{"Raw", `Item["env"]`}, args: [][]any{nil, {"env"}}},
		{expr: "x.Weights[5e-1]", names: []string{"Weights", "Item[0.5]"}, args: [][]any{nil, {0.5}}},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()

			segments, err := builder.Decompose(tc.expr)
			require.NoError(t, err)
			require.Len(t, segments, len(tc.names))

			for i, seg := range segments {
				assert.Equal(t, tc.names[i], seg.Name)
				if tc.args == nil || tc.args[i] == nil {
					assert.Equal(t, builder.MemberSegment, seg.Kind)
					assert.Empty(t, seg.Args)
					continue
				}
				assert.Equal(t, builder.IndexSegment, seg.Kind)
				assert.Equal(t, tc.args[i], seg.Args)
			}
		})
	}
}

func TestDecompose_DistinctIndexerNames(t *testing.T) {
	t.Parallel()

	a, err := builder.Decompose("x.Items[0]")
	require.NoError(t, err)
	b, err := builder.Decompose("x.Items[1]")
	require.NoError(t, err)

	assert.Equal(t, a[0], b[0])
	assert.NotEqual(t, a[1].Name, b[1].Name)
}

func TestDecompose_EqualKeysShareName(t *testing.T) {
	t.Parallel()

	cases := [][2]string{
		{"x.Items[1]", "x.Items[0x1]"},
		{"x.Items[8]", "x.Items[0o10]"},
		{"x.Items[1000]", "x.Items[1_000]"},
		{`x.Labels["k"]`, "x.Labels[`k`]"},
		{`x.Labels["\x41"]`, `x.Labels["A"]`},
	}
	for _, pair := range cases {
		a, err := builder.Decompose(pair[0])
		require.NoError(t, err)
		b, err := builder.Decompose(pair[1])
		require.NoError(t, err)
		assert.Equal(t, a[1].Name, b[1].Name, pair[1])
		assert.Equal(t, a[1].Args, b[1].Args, pair[1])
	}
}

func TestDecompose_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		expr     string
		wantNode string
	}{
		{expr: "x.Items.Len()", wantNode: "CallExpr"},
		{expr: "x.A.B * 2", wantNode: "BinaryExpr"},
		{expr: "x.P.(fmt.Stringer)", wantNode: "TypeAssertExpr"},
		{expr: "&x.A", wantNode: "UnaryExpr"},
		{expr: "x.Items[-x.N]", wantNode: "UnaryExpr"},
		{expr: "x.Items[n]", wantNode: "Ident"},
		{expr: `"literal"`, wantNode: "BasicLit"},
		{expr: "x.Items[len(x.Items)]", wantNode: "CallExpr"},
		{expr: "x.Cells[true, false]", wantNode: "IndexListExpr"},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()

			_, err := builder.Decompose(tc.expr)
			var unsupported builder.UnsupportedExpressionError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, tc.wantNode, unsupported.Node)
			assert.Equal(t, tc.expr, unsupported.Expr)
		})
	}

	for _, expr := range []string{"x", "", "x..A", "x.A[", "x.Cells[1, 2]"} {
		_, err := builder.Decompose(expr)
		var invalid builder.InvalidPathError
		assert.ErrorAs(t, err, &invalid, expr)
	}
}
