package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the node tree.
var (
	// ErrNilNode is returned when a tree edit is given a nil node.
	ErrNilNode = errors.New("node cannot be nil")

	// ErrAttached is returned when attaching a node that already has a parent.
	// Moving a node is always expressed as Remove followed by Append/InsertBefore.
	ErrAttached = errors.New("node already has a parent")

	// ErrCycle is returned when attaching a node under itself or one of its descendants.
	ErrCycle = errors.New("node cannot be attached under its own subtree")

	// ErrNotChild is returned when a reference node is not a child of the parent being edited.
	ErrNotChild = errors.New("reference node is not a child of this node")

	// ErrDetached is returned by operations that need a parent on a node that has none.
	ErrDetached = errors.New("node has no parent")

	// ErrInvalidPath is returned when a child-index path does not resolve to a node.
	ErrInvalidPath = errors.New("invalid node path")

	// ErrInvalidDirection indicates a publish direction other than Parents or Children.
	// Publishing with it panics; ParseDirection returns it.
	ErrInvalidDirection = errors.New("invalid publish direction")

	// ErrInvalidTopic indicates an empty event name. Subscribing or publishing
	// with one panics.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilHandler indicates a nil handler was passed to a subscribe call.
	ErrNilHandler = errors.New("handler cannot be nil")
)

// PathError reports where a child-index path stopped resolving.
type PathError struct {
	// Path is the full path that was being resolved.
	Path []int

	// Depth is the position in Path that failed.
	Depth int

	// Children is the number of children available at that depth.
	Children int
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("invalid node path %v: index %d at depth %d out of range [0,%d)",
		e.Path, e.Path[e.Depth], e.Depth, e.Children)
}

// Is allows errors.Is to match PathError with ErrInvalidPath.
func (e *PathError) Is(target error) bool {
	return target == ErrInvalidPath
}
