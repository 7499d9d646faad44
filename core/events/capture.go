package events

const (
	// KindCaptureStarted identifies microphone capture start.
	KindCaptureStarted Kind = "capture.started"
	// KindCaptureStopped identifies microphone capture stop.
	KindCaptureStopped Kind = "capture.stopped"
)

// CaptureStarted marks the beginning of microphone capture.
type CaptureStarted struct {
	Base
}

// NewCaptureStarted creates a capture started event.
func NewCaptureStarted() CaptureStarted {
	return CaptureStarted{Base: NewBase(KindCaptureStarted)}
}

// CaptureStopped marks the end of microphone capture.
type CaptureStopped struct {
	Base
}

// NewCaptureStopped creates a capture stopped event.
func NewCaptureStopped() CaptureStopped {
	return CaptureStopped{Base: NewBase(KindCaptureStopped)}
}
