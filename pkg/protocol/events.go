package protocol

// Event names pushed to dashboard WebSocket clients.
const (
	EventLTP      = "ltp"
	EventSession  = "session"
	EventError    = "error"
	EventShutdown = "shutdown"
)
