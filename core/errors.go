package bridge

import "errors"

var (
	// ErrConnectionFailed marks a failed live stream handshake or a
	// transport failure. The session becomes unusable and a new one must be
	// connected.
	ErrConnectionFailed = errors.New("live stream connection failed")
	// ErrSessionNotOpen marks an operation that requires an open session,
	// such as starting recording.
	ErrSessionNotOpen = errors.New("session is not open")
	// ErrSessionClosed marks an operation against an already closed
	// session.
	ErrSessionClosed = errors.New("session closed")
)
