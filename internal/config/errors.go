package config

import (
	"errors"
	"fmt"
)

// ErrorKind is the category of a configuration error.
type ErrorKind int

const (
	// KindMalformed means the config source could not be read or parsed, or had unknown keys.
	KindMalformed ErrorKind = iota
	// KindMissingField means a required key is absent or empty.
	KindMissingField
	// KindBadAddress means a client MAC address failed syntax validation.
	KindBadAddress
	// KindMissingCredential means user or password is absent from both the file and the overrides.
	KindMissingCredential
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed config"
	case KindMissingField:
		return "missing field"
	case KindBadAddress:
		return "bad address"
	case KindMissingCredential:
		return "missing credential"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned for every configuration problem detected before network activity.
type Error struct {
	Kind    ErrorKind
	Field   string // config key, for KindMissingField and KindMissingCredential
	Address string // offending address, for KindBadAddress
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBadAddress:
		return fmt.Sprintf("badly formed MAC address %q: %v", e.Address, e.Err)
	case KindMissingCredential:
		return fmt.Sprintf("%s is required: set it in the config file or pass --%s", e.Field, e.Field)
	case KindMissingField:
		if e.Err != nil {
			return fmt.Sprintf("%s is required: %v", e.Field, e.Err)
		}
		return fmt.Sprintf("%s is required", e.Field)
	default:
		return fmt.Sprintf("malformed config: %v", e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a config *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
