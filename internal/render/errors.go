package render

import "errors"

var (
	// ErrForeignMirror is returned when a mirror operation is given a
	// mirror that is not an *Element.
	ErrForeignMirror = errors.New("mirror is not a render element")

	// ErrHasParent is returned when appending or inserting an element that
	// is already attached.
	ErrHasParent = errors.New("element already has a parent")

	// ErrNotChild is returned when a reference or removed element is not a
	// child of the receiver.
	ErrNotChild = errors.New("element is not a child")

	// ErrNoChildren is returned when adding children to a void element or a
	// text node.
	ErrNoChildren = errors.New("element cannot have children")

	// ErrFragment is returned by Parse when markup does not hold exactly
	// one top-level node.
	ErrFragment = errors.New("markup must contain exactly one node")
)
