// Package schema provides implementations of req.Schema.
//
// Map declares its fields one by one and Struct reads them from a struct type.
// JSON compiles them from a JSON Schema document, which Reflect can build from a struct type.
package schema
