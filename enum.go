package reqargs

// Enumerable is the interface implemented by types that can only be represented by enumerable, constant values.
//
// Validating a field holding an Enumerable, or a slice of them, with the "enum" rule calls Valid.
type Enumerable interface {
	String() string
	Valid() error
}
