// Command pathgen generates typed path expressions for builder.
//
// Builder paths are strings such as "o.Customer.Address.City". They are
// checked against the target type when With is called, but a typo is still
// only caught at runtime. pathgen reads a struct type from source and emits
// one constant per reachable exported field, plus an ...At helper for each
// slice, array or map field:
//
//	//go:generate go run github.com/sghaida/objb/cmd/pathgen --type Order --root o --out order_paths.gen.go
//
// produces
//
//	const (
//		OrderCustomerName = "o.Customer.Name"
//		OrderLines        = "o.Lines"
//	)
//
//	func OrderLinesAt(key int) string {
//		return "o.Lines" + "[" + strconv.Itoa(key) + "]"
//	}
//
// which are used as
//
//	b.With(OrderCustomerName, "Ada")
//	b.With(OrderLinesAt(0)+".SKU", "BOOK-1")
//
// Flags
//
//	--dir     package directory to read (default ".")
//	--type    struct type to generate for (required)
//	--root    identifier the paths start with (default "x")
//	--prefix  prefix for generated names (default: the type name)
//	--out     output file (required)
//	--depth   how many struct levels to follow (default 4)
//
// Only struct types declared in the same package are followed. Fields of
// imported types get a constant but are not descended into. A type that
// refers back to itself is expanded once.
//
// Files ending in _test.go or .gen.go are ignored, so regenerating never
// reads its own output.
package main
