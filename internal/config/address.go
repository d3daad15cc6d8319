package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrInvalidAddress matches every error returned by ValidateAddress.
var ErrInvalidAddress = errors.New("invalid hardware address")

const addressSegments = 6

// AddressError describes why a hardware address was rejected.
type AddressError struct {
	Address string
	Reason  string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("invalid hardware address %q: %s", e.Address, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidAddress) true for any *AddressError.
func (e *AddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// ValidateAddress checks that address is six colon-separated hex bytes.
// Segments are not required to be two digits wide ("a:b:c:d:e:f" is valid).
// The address is never normalized.
func ValidateAddress(address string) error {
	_, err := ParseAddress(address)
	return err
}

// ParseAddress converts a validated address to its six bytes. Unlike
// net.ParseMAC it accepts segments of any width that fit in a byte.
func ParseAddress(address string) (net.HardwareAddr, error) {
	segments := strings.Split(address, ":")
	if len(segments) != addressSegments {
		return nil, &AddressError{
			Address: address,
			Reason:  fmt.Sprintf("expected %d segments, got %d", addressSegments, len(segments)),
		}
	}

	hw := make(net.HardwareAddr, 0, addressSegments)
	for i, seg := range segments {
		b, err := strconv.ParseUint(seg, 16, 8)
		if err != nil {
			return nil, &AddressError{
				Address: address,
				Reason:  fmt.Sprintf("segment %d (%q) is not a hex byte", i+1, seg),
			}
		}
		hw = append(hw, byte(b))
	}

	return hw, nil
}
