// Package render keeps an HTML element tree in step with an event tree.
//
// An Element wraps a golang.org/x/net/html node and implements
// event.Mirror, so a node built with event.WithMirror(render.NewElement(...))
// has its structural edits applied to the HTML tree first. Markup and Render
// serialize the result.
//
// Attribute names className and htmlFor are stored as class and for.
// Attributes are kept sorted by name so output is stable.
package render
