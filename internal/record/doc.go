// Package record captures publishes so they can be replayed against a tree
// built the same way.
//
// A Recorder is an event.Tracer. It stores each top-level publish as the
// publishing node's path from the root, the direction, the event name and
// the JSON-encoded payload. Publishes made from inside handlers are not
// stored; replaying the outer publish reproduces them.
//
// Records go to a Store: MemoryStore for tests and short sessions,
// SQLiteStore for a file that outlives the process. A Replayer reads a Store
// and re-issues each publish from the node at the recorded path, pausing
// its Recorder while it does so.
package record
