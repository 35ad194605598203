package topic

// Topic is the name an event is published and subscribed under. It is
// matched by exact string identity.
type Topic string

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// IsValid reports whether t can be subscribed to or published. Any
// non-empty name is valid.
func (t Topic) IsValid() bool {
	return t != ""
}
