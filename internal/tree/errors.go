package tree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShape indicates a source value that cannot be placed in a tree.
	ErrShape = errors.New("tree: unsupported value in source document")

	// ErrInvalidState indicates a state that cannot be applied directly.
	ErrInvalidState = errors.New("tree: state cannot be applied directly")

	// ErrUnknownNode indicates a node id outside the tree.
	ErrUnknownNode = errors.New("tree: unknown node")

	// ErrPathNotFound indicates a key path that does not name a node.
	ErrPathNotFound = errors.New("tree: path not found")

	// ErrInconsistent indicates a branch whose state disagrees with its children.
	ErrInconsistent = errors.New("tree: inconsistent check state")
)

// ShapeError reports where in the source an unsupported value was found.
type ShapeError struct {
	Path []string
	Type string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s at %q", ErrShape, e.Type, strings.Join(e.Path, "/"))
}

func (e *ShapeError) Unwrap() error {
	return ErrShape
}
