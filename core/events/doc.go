// Package events defines the typed event contract emitted by the voice
// session bridge.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*
//   - capture.*
//   - playback.*
//   - tool_call.*
//   - calendar.*
//
// session events
//
//   - SessionOpened (session.opened): the live stream handshake completed.
//   - SessionClosed (session.closed): the live stream ended; carries the
//     terminal error message when the close was not clean.
//
// capture events
//
//   - CaptureStarted (capture.started): microphone capture began.
//   - CaptureStopped (capture.stopped): microphone capture ended.
//
// playback events
//
//   - PlaybackStarted (playback.started): a response buffer began playing.
//   - PlaybackEnded (playback.ended): a response buffer finished playing.
//   - PlaybackInterrupted (playback.interrupted): pending buffers were
//     flushed because the user spoke over the response.
//
// tool_call events
//
//   - ToolCallStarted (tool_call.started): tool execution started.
//   - ToolCallCompleted (tool_call.completed): tool execution completed.
//   - ToolCallFailed (tool_call.failed): tool execution failed.
//
// calendar events
//
//   - EventsRefreshed (calendar.events_refreshed): the calendar changed as
//     a result of a tool call; consumers should re-fetch their event list.
package events
