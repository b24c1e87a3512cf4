// Package objb assembles populated object graphs from path expressions.
//
// The repository is organised as:
//
//   - builder: the library. Builder[T] records values against paths such as
//     "o.Customer.Address.City" and applies them to a new T on Build, with
//     per-type constructors and post-build actions looked up in a Registry.
//   - cmd/pathgen: a code generator that turns a struct type into typed path
//     constants, so paths can be referenced by name.
//   - examples: a small order domain with generated paths and registered
//     hooks; examples/orders is a runnable walkthrough.
//
// Start with the builder package documentation.
package objb
