// Package errors provides structured, coded error values for ripple.
//
// Every error raised for API misuse, reconciliation contract violations or
// configuration problems carries a stable code (e.g., "E101") that maps to a
// registered template:
//   - A short message describing the error
//   - A detailed explanation
//   - A category used for grouping in logs
//
// # Categories
//
//   - reactive: misuse of the reactive API (invalid targets, unknown fields)
//   - render: component render failures, duplicate keys
//   - scheduler: job failures recovered during a flush
//   - protocol: frame encoding and decoding problems
//   - config: configuration loading and validation
//   - storage: snapshot persistence
//
// # Usage
//
//	err := errors.New(errors.ErrDuplicateKey).
//	    WithDetail(fmt.Sprintf("key %q appears twice", key))
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E101: Duplicate key in sibling list
//	//
//	//   key "a" appears twice
package errors
