package builder

import (
	"strings"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders the pending values, one per line in path order:
//
//	builder.Order
//	  Customer.Name = Ada
//	  Lines[0].Qty = 2 (skip defaults)
//	  ID = <func>
//
// Producers are not invoked.
func (b *Builder[T]) Dump() string {
	if b == nil {
		return ""
	}

	var out strings.Builder
	out.WriteString(typeName(b.tree.nodes[rootIndex].typ))
	out.WriteByte('\n')

	lines := make(map[string]string)
	for i := range b.tree.nodes {
		n := &b.tree.nodes[i]
		if n.kind != valueNode {
			continue
		}
		var val string
		switch n.producer {
		case funcProducer:
			val = "<func>"
		case builderFuncProducer:
			val = "<builder func>"
		default:
			if n.literal.IsValid() && n.literal.CanInterface() {
				val = dumpConfig.Sprintf("%v", n.literal.Interface())
			} else {
				val = "<nil>"
			}
		}
		if !n.allowDefaults {
			val += " (skip defaults)"
		}
		lines[b.tree.path(i)] = val
	}

	for _, p := range b.tree.valuePaths() {
		out.WriteString("  ")
		out.WriteString(p)
		out.WriteString(" = ")
		out.WriteString(lines[p])
		out.WriteByte('\n')
	}
	return out.String()
}
