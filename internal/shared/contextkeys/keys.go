package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "clubportal context key " + string(c)
}

const (
	// ProfileIDKey identifies the client profile (one browser's storage namespace).
	ProfileIDKey = contextKey("profileID")
	// UserIDKey carries the uid of the signed-in user, when known.
	UserIDKey = contextKey("userID")
	// RequestIDKey carries the request id assigned by the edge.
	RequestIDKey = contextKey("requestID")
	// ComponentKey names the component emitting a log line.
	ComponentKey = contextKey("component")
	// OperationKey names the operation in progress.
	OperationKey = contextKey("operation")
)
