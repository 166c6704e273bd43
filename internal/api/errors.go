package api

import "errors"

var (
	// ErrTimeout indicates the request deadline was exceeded.
	ErrTimeout = errors.New("request timed out")
	// ErrTransport indicates a connectivity or transport-level failure.
	ErrTransport = errors.New("transport failure")
	// ErrServerRejected indicates a response was received but its status
	// did not report success.
	ErrServerRejected = errors.New("server rejected request")
)

// Retriable reports whether an error is a transient transport condition
// worth retrying later. Server rejections are not retriable.
func Retriable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransport)
}
