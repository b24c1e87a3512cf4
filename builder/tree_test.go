package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaf struct {
	C string
	D string
}

type mid struct {
	B leaf
}

type root struct {
	A     mid
	Items []leaf
	Name  string
}

func branchNamed(t *testing.T, tr *tree, parent int, name string) int {
	t.Helper()
	idx, ok := tr.child(parent, name)
	require.True(t, ok, name)
	require.Equal(t, branchNode, tr.nodes[idx].kind, name)
	return idx
}

func TestTree_SharedPrefixCreatedOnce(t *testing.T) {
	t.Parallel()

	b := New[root](nil)
	_, err := b.With("x.A.B.C", "c")
	require.NoError(t, err)
	_, err = b.With("x.A.B.D", "d")
	require.NoError(t, err)

	// root, A, A.B, C, D
	require.Len(t, b.tree.nodes, 5)

	a := branchNamed(t, b.tree, rootIndex, "A")
	ab := branchNamed(t, b.tree, a, "B")
	assert.Len(t, b.tree.nodes[ab].children, 2)
	assert.Equal(t, a, b.tree.nodes[ab].parent)
	assert.Equal(t, "A.B", b.tree.path(ab))
}

func TestTree_SamePathReusesValueNode(t *testing.T) {
	t.Parallel()

	b := New[root](nil)
	for _, v := range []string{"one", "two", "three"} {
		_, err := b.With("x.Name", v)
		require.NoError(t, err)
	}

	require.Len(t, b.tree.nodes, 2)
	idx, ok := b.tree.child(rootIndex, "Name")
	require.True(t, ok)
	assert.Equal(t, "three", b.tree.nodes[idx].literal.Interface())
}

func TestTree_IndexersAreDistinctNodes(t *testing.T) {
	t.Parallel()

	b := New[root](nil)
	_, err := b.With("x.Items[0].C", "a")
	require.NoError(t, err)
	_, err = b.With("x.Items[1].C", "b")
	require.NoError(t, err)

	items := branchNamed(t, b.tree, rootIndex, "Items")
	first := branchNamed(t, b.tree, items, "Item[0]")
	second := branchNamed(t, b.tree, items, "Item[1]")
	assert.NotEqual(t, first, second)
	assert.Equal(t, "Items[1]", b.tree.path(second))
}

func TestTree_ConstructorMarks(t *testing.T) {
	t.Parallel()

	var inside bool
	b := New[root](nil, Constructor[root](func(b *Builder[root]) (*root, error) {
		c, err := From[string](b, "x.A.B.C")
		inside = true

		// marks are visible while the constructor runs
		a, _ := b.tree.child(rootIndex, "A")
		ab, _ := b.tree.child(a, "B")
		cIdx, _ := b.tree.child(ab, "C")
		dIdx, _ := b.tree.child(ab, "D")
		assert.True(t, b.tree.nodes[a].usedByConstructor)
		assert.True(t, b.tree.nodes[ab].usedByConstructor)
		assert.True(t, b.tree.nodes[cIdx].usedByConstructor)
		assert.False(t, b.tree.nodes[dIdx].usedByConstructor)
		assert.False(t, b.tree.consumed(ab))

		return &root{A: mid{B: leaf{C: "ctor-" + c}}}, err
	}))
	_, err := b.With("x.A.B.C", "c")
	require.NoError(t, err)
	_, err = b.With("x.A.B.D", "d")
	require.NoError(t, err)

	r, err := b.Build()
	require.NoError(t, err)
	require.True(t, inside)
	assert.Equal(t, leaf{C: "ctor-c", D: "d"}, r.A.B)
}

func TestTree_FromOutsideConstructorMarksNothing(t *testing.T) {
	t.Parallel()

	b := New[root](nil)
	_, err := b.With("x.A.B.C", "c")
	require.NoError(t, err)

	v, err := From[leaf](b, "x.A.B")
	require.NoError(t, err)
	assert.Equal(t, leaf{C: "c"}, v)

	for i := range b.tree.nodes {
		assert.False(t, b.tree.nodes[i].usedByConstructor)
	}
}

func TestTree_ResetClearsMarksAndCache(t *testing.T) {
	t.Parallel()

	calls := 0
	b := New[root](nil)
	_, err := b.WithFunc("x.Name", func() any {
		calls++
		return "n"
	})
	require.NoError(t, err)

	idx, _ := b.tree.child(rootIndex, "Name")
	_, err = b.tree.resolve(idx)
	require.NoError(t, err)
	_, err = b.tree.resolve(idx)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	b.tree.nodes[idx].usedByConstructor = true
	b.tree.reset()
	assert.False(t, b.tree.nodes[idx].usedByConstructor)

	_, err = b.tree.resolve(idx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	segments, err := Decompose(`x.Lines[0].Attrs["k"].V`)
	require.NoError(t, err)
	assert.Equal(t, `Lines[0].Attrs["k"].V`, formatPath(segments))
}
