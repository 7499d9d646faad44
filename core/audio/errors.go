package audio

import "errors"

// Device error taxonomy shared by capture clients. Clients wrap these so
// the session facade can classify failures without knowing the backend.
var (
	// ErrPermissionDenied marks microphone access rejected by the user or
	// the OS. User-recoverable; recording simply stays off.
	ErrPermissionDenied = errors.New("microphone access denied")
	// ErrDeviceUnavailable marks a missing or failed audio device.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
)
