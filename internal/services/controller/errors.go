package controller

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotLoggedIn is returned when commands are dispatched on a session
// that has not completed a successful login.
var ErrNotLoggedIn = errors.New("controller session is not logged in")

// TransportErrorKind is the category of a failed controller request.
type TransportErrorKind int

const (
	// SendFailed means no HTTP response was received (connection refused, TLS, timeout).
	SendFailed TransportErrorKind = iota
	// ServerError means the controller answered with a 5xx status.
	ServerError
	// UnexpectedStatus means the controller answered with any other non-2xx status.
	UnexpectedStatus
)

// String returns a human-readable name for the kind.
func (k TransportErrorKind) String() string {
	switch k {
	case SendFailed:
		return "send failed"
	case ServerError:
		return "server error"
	case UnexpectedStatus:
		return "unexpected status"
	default:
		return fmt.Sprintf("TransportErrorKind(%d)", int(k))
	}
}

// TransportError is returned for every failed request to the controller.
type TransportError struct {
	Kind       TransportErrorKind
	Op         string // e.g. "login", "block-sta AA:BB:CC:DD:EE:FF"
	StatusCode int    // zero for SendFailed
	Err        error  // underlying transport error, SendFailed only
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case SendFailed:
		return fmt.Sprintf("%s: sending request failed: %v", e.Op, e.Err)
	case ServerError:
		return fmt.Sprintf("%s: controller server error: HTTP %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	default:
		return fmt.Sprintf("%s: unexpected HTTP status %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// Unwrap returns the underlying transport error, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *TransportError of the given kind.
func IsKind(err error, kind TransportErrorKind) bool {
	var e *TransportError
	return errors.As(err, &e) && e.Kind == kind
}
