// Package topic provides the event-name type used by the node tree router.
//
// Topics are opaque names, often grouped with dot notation by convention:
//
//	who-are-you
//	todo.item.toggled
//	todo.filter.changed
//
// Matching is exact: the router keeps a per-node count of how many
// descendants subscribe to each name, so "todo.*" is just another name.
// Only the empty name is rejected.
package topic
