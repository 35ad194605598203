// Package event routes events up and down a tree of nodes.
//
// Every Node can publish an event toward its ancestors (PublishToParents) or
// into its descendants (PublishToChildren). Nodes that want to hear those
// events register handlers: SubscribeToChildren for events their descendants
// publish upward, SubscribeToParents for events their ancestors publish
// downward. Handlers return replies, and the publish call returns the
// replies that its Filter accepted, in visiting order.
//
// # Walks
//
//	PublishToParents     parent, grandparent, ... root
//	PublishToChildren    pre-order over descendants, first child first
//
// Either walk ends early when a handler or the filter calls Event.Stop.
// The convenience reducers build on that:
//
//	reply, ok := leaf.PublishToParentsUptoFirstReply("who-are-you", nil)
//	reply, ok := root.PublishToChildrenUptoFirstUsefulReply("find", id, isMatch)
//
// # Interest counts
//
// Each node keeps, per event name, the number of subscribed-by-parents
// handlers registered anywhere below it. PublishToChildren descends into a
// node's children only when that count is non-zero, so branches with no
// listener are skipped without being visited.
//
// The counts are maintained incrementally. Append, InsertBefore, RemoveChild
// and ReplaceWith add or remove the moved subtree's contribution along the
// path to the root using the subtree root's own handlers plus its already
// aggregated counts; SubscribeToParents and UnsubscribeFromParents adjust
// the ancestors of the subscribing node. A count that drops to zero is
// removed, so InterestSnapshot never reports zero entries.
//
// # Mirrors and tracers
//
// A node may carry a Mirror, an external structure (for example an HTML
// element tree) that tree edits update before the node tree changes. A node
// may also carry a Tracer, inherited by its descendants, that observes the
// start and end of each publish for logging, profiling or recording.
//
// # Concurrency
//
// The package is single-threaded and synchronous. Handlers run on the
// publisher's goroutine and may publish or edit the tree, but editing the
// subtree a walk is currently visiting is not supported. Nothing is locked.
package event
