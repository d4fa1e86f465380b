// Package promo validates promotional codes against pre-published
// code files. A code is honoured when it is 8 to 10 characters long
// and appears in at least two of the configured files.
package promo

import "context"

// Validator checks promo codes supplied at checkout.
type Validator interface {
	// Validate returns a domain error when the code is malformed or
	// not present in enough code files.
	Validate(ctx context.Context, code string) error

	// Close releases resources held by the validator.
	Close() error
}

// CodeSet is an in-memory set of promo codes.
type CodeSet interface {
	Contains(code string) bool
	Size() int
}

// Loader reads one gzipped code file into a CodeSet. The file holds
// one code per line.
type Loader interface {
	Load(ctx context.Context, path string) (CodeSet, error)
}
