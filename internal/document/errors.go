package document

import "errors"

var (
	// ErrNotObject indicates a document whose top level is not a mapping.
	ErrNotObject = errors.New("document: top level is not a mapping")

	// ErrCycle indicates a YAML alias that refers back to one of its own ancestors.
	ErrCycle = errors.New("document: recursive alias")
)
