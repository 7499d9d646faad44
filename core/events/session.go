package events

const (
	// KindSessionOpened identifies live stream handshake completion.
	KindSessionOpened Kind = "session.opened"
	// KindSessionClosed identifies live stream termination.
	KindSessionClosed Kind = "session.closed"
)

// SessionOpened marks a completed live stream handshake.
type SessionOpened struct {
	Base
}

// NewSessionOpened creates a session opened event.
func NewSessionOpened() SessionOpened {
	return SessionOpened{Base: NewBase(KindSessionOpened)}
}

// SessionClosed marks live stream termination. Error is empty for a clean
// close.
type SessionClosed struct {
	Base
	Error string
}

// NewSessionClosed creates a session closed event.
func NewSessionClosed(err string) SessionClosed {
	return SessionClosed{Base: NewBase(KindSessionClosed), Error: err}
}
