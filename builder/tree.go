package builder

import (
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strconv"
)

const rootIndex = 0

type nodeKind uint8

const (
	branchNode nodeKind = iota + 1
	valueNode
)

func (k nodeKind) String() string {
	if k == branchNode {
		return "branch"
	}
	return "value"
}

type producerKind uint8

const (
	literalProducer producerKind = iota + 1
	funcProducer
	builderFuncProducer
)

// node is one entry of the tree arena. Nodes refer to each other by index.
type node struct {
	name   string
	seg    PathSegment
	parent int
	kind   nodeKind

	// typ is the type of the slot this node populates; fieldIndex is set for
	// member segments and may traverse embedded structs.
	typ        reflect.Type
	fieldIndex []int

	usedByConstructor bool

	// branch
	children map[string]int

	// value
	producer      producerKind
	literal       reflect.Value
	fn            func() any
	builderFn     func() (any, error)
	allowDefaults bool

	// resolution cache, valid while resolvedGen == tree.gen
	resolvedGen int
	resolved    reflect.Value

	// resolving is set while the producer runs
	resolving bool
}

// producer is what a value node will yield at apply time.
type producer struct {
	kind      producerKind
	literal   reflect.Value
	fn        func() any
	builderFn func() (any, error)
}

// tree holds pending mutations for one root type. Index 0 is the root.
type tree struct {
	nodes []node
	gen   int
	log   *slog.Logger
}

func newTree(root reflect.Type, log *slog.Logger) *tree {
	return &tree{
		nodes: []node{{
			parent:   -1,
			kind:     branchNode,
			typ:      root,
			children: make(map[string]int),
		}},
		gen: 1,
		log: log,
	}
}

func (t *tree) child(parent int, name string) (int, bool) {
	p := &t.nodes[parent]
	if p.kind != branchNode {
		return 0, false
	}
	idx, ok := p.children[name]
	return idx, ok
}

// path renders the dotted path of a node, e.g. "Lines[0].Qty".
func (t *tree) path(idx int) string {
	var segs []PathSegment
	for i := idx; i > rootIndex; i = t.nodes[i].parent {
		segs = append(segs, t.nodes[i].seg)
	}
	slices.Reverse(segs)
	return formatPath(segs)
}

func (t *tree) link(parent int, n node) int {
	n.parent = parent
	idx := len(t.nodes)
	t.nodes = append(t.nodes, n)
	t.nodes[parent].children[n.name] = idx
	return idx
}

// addOrGetBranch returns the branch named seg.Name under parent, creating it
// when absent.
func (t *tree) addOrGetBranch(parent int, seg PathSegment) (int, error) {
	if idx, ok := t.child(parent, seg.Name); ok {
		if t.nodes[idx].kind != branchNode {
			return 0, PathConflictError{Path: t.path(idx), Existing: valueNode.String()}
		}
		return idx, nil
	}

	typ, fieldIndex, err := slotType(t.nodes[parent].typ, seg)
	if err != nil {
		return 0, err
	}
	return t.link(parent, node{
		name:       seg.Name,
		seg:        seg,
		kind:       branchNode,
		typ:        typ,
		fieldIndex: fieldIndex,
		children:   make(map[string]int),
	}), nil
}

// addOrGetValue stores p at seg.Name under parent. An existing value node
// is overwritten in place.
func (t *tree) addOrGetValue(parent int, seg PathSegment, p producer, allowDefaults bool) (int, error) {
	idx, ok := t.child(parent, seg.Name)
	if ok {
		if t.nodes[idx].kind != valueNode {
			return 0, PathConflictError{Path: t.path(idx), Existing: branchNode.String()}
		}
	} else {
		typ, fieldIndex, err := slotType(t.nodes[parent].typ, seg)
		if err != nil {
			return 0, err
		}
		idx = t.link(parent, node{
			name:       seg.Name,
			seg:        seg,
			kind:       valueNode,
			typ:        typ,
			fieldIndex: fieldIndex,
		})
	}

	n := &t.nodes[idx]
	n.producer = p.kind
	n.literal = p.literal
	n.fn = p.fn
	n.builderFn = p.builderFn
	n.allowDefaults = allowDefaults
	n.resolvedGen = 0
	return idx, nil
}

// checkConflicts reports whether storing a value at segments would turn an
// existing value into a branch or a branch into a value.
func (t *tree) checkConflicts(segments []PathSegment) error {
	cur := rootIndex
	for i, seg := range segments {
		idx, ok := t.child(cur, seg.Name)
		if !ok {
			return nil
		}
		kind := t.nodes[idx].kind
		leaf := i == len(segments)-1
		if leaf && kind == branchNode || !leaf && kind == valueNode {
			return PathConflictError{Path: t.path(idx), Existing: kind.String()}
		}
		cur = idx
	}
	return nil
}

// typeAt resolves the slot type for segments without touching the tree.
func (t *tree) typeAt(segments []PathSegment) (reflect.Type, error) {
	typ := t.nodes[rootIndex].typ
	for _, seg := range segments {
		next, _, err := slotType(typ, seg)
		if err != nil {
			return nil, err
		}
		typ = next
	}
	return typ, nil
}

// walk follows segments from the root without creating nodes and returns
// the indices visited. ok is false if the path does not fully resolve.
func (t *tree) walk(segments []PathSegment) ([]int, bool) {
	visited := make([]int, 0, len(segments))
	cur := rootIndex
	for _, seg := range segments {
		next, ok := t.child(cur, seg.Name)
		if !ok {
			return nil, false
		}
		visited = append(visited, next)
		cur = next
	}
	return visited, true
}

// reset starts a new build generation: cached producer results are dropped
// and constructor marks cleared.
func (t *tree) reset() {
	t.gen++
	for i := range t.nodes {
		t.nodes[i].usedByConstructor = false
	}
}

func (t *tree) markSubtree(idx int) {
	n := &t.nodes[idx]
	n.usedByConstructor = true
	for _, c := range n.children {
		t.markSubtree(c)
	}
}

// consumed reports whether every value below a branch was read by the
// constructor, in which case the branch need not be applied at all.
func (t *tree) consumed(idx int) bool {
	n := &t.nodes[idx]
	if n.kind == valueNode {
		return n.usedByConstructor
	}
	if len(n.children) == 0 {
		return false
	}
	for _, c := range n.children {
		if !t.consumed(c) {
			return false
		}
	}
	return true
}

// sortedChildren gives a stable application order so producers run
// deterministically.
func (t *tree) sortedChildren(idx int) []int {
	children := t.nodes[idx].children
	names := slices.Sorted(maps.Keys(children))
	out := make([]int, len(names))
	for i, name := range names {
		out[i] = children[name]
	}
	return out
}

// valuePaths lists every value node with its path, sorted.
func (t *tree) valuePaths() []string {
	var out []string
	for i := range t.nodes {
		if t.nodes[i].kind == valueNode {
			out = append(out, t.path(i))
		}
	}
	slices.Sort(out)
	return out
}

// MaxSliceIndex is the largest slice index a path may name. Slices are
// grown up to the index on Build, so the bound keeps that allocation sane.
const MaxSliceIndex = 1 << 20

// slotType resolves the type reached by following seg from parent.
func slotType(parent reflect.Type, seg PathSegment) (reflect.Type, []int, error) {
	container := parent
	for container.Kind() == reflect.Pointer {
		container = container.Elem()
	}

	switch seg.Kind {
	case MemberSegment:
		if container.Kind() != reflect.Struct {
			return nil, nil, UnknownMemberError{Type: parent, Member: seg.Name}
		}
		field, ok := container.FieldByName(seg.Name)
		if !ok || !field.IsExported() {
			return nil, nil, UnknownMemberError{Type: parent, Member: seg.Name}
		}
		return field.Type, field.Index, nil

	case IndexSegment:
		switch container.Kind() {
		case reflect.Slice, reflect.Array:
			i, ok := seg.Args[0].(int64)
			if !ok || i < 0 {
				return nil, nil, InvalidPathError{Expr: seg.Name, Reason: "index must be a non-negative integer"}
			}
			if container.Kind() == reflect.Array && i >= int64(container.Len()) {
				return nil, nil, InvalidPathError{Expr: seg.Name, Reason: "index out of range for " + container.String()}
			}
			if i > MaxSliceIndex {
				return nil, nil, InvalidPathError{Expr: seg.Name, Reason: "index exceeds " + strconv.Itoa(MaxSliceIndex)}
			}
			return container.Elem(), nil, nil

		case reflect.Map:
			if _, ok := convertValue(reflect.ValueOf(seg.Args[0]), container.Key()); !ok {
				return nil, nil, TypeMismatchError{Path: seg.Name, Want: container.Key(), Got: reflect.TypeOf(seg.Args[0])}
			}
			return container.Elem(), nil, nil
		}
		return nil, nil, InvalidPathError{Expr: seg.Name, Reason: "type " + parent.String() + " is not indexable"}
	}
	return nil, nil, InvalidPathError{Expr: seg.Name, Reason: "unknown segment kind"}
}
