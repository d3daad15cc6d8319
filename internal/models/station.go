package models

import (
	"fmt"
	"strings"
)

// StationCommand is the action applied to every configured station.
type StationCommand int

const (
	// BlockStation denies the station network access.
	BlockStation StationCommand = iota
	// UnblockStation restores the station's network access.
	UnblockStation
)

// Keyword returns the controller command keyword for the stamgr endpoint.
func (c StationCommand) Keyword() string {
	switch c {
	case BlockStation:
		return "block-sta"
	case UnblockStation:
		return "unblock-sta"
	default:
		return ""
	}
}

func (c StationCommand) String() string {
	switch c {
	case BlockStation:
		return "block"
	case UnblockStation:
		return "unblock"
	default:
		return fmt.Sprintf("StationCommand(%d)", int(c))
	}
}

// ParseStationCommand parses "block" or "unblock", ignoring case.
func ParseStationCommand(s string) (StationCommand, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block":
		return BlockStation, nil
	case "unblock":
		return UnblockStation, nil
	default:
		return 0, fmt.Errorf("command must be 'block' or 'unblock', got %q", s)
	}
}

// LoginRequest is the body of the controller login call.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StationCommandRequest is the body of a stamgr command.
type StationCommandRequest struct {
	Cmd string `json:"cmd"`
	MAC string `json:"mac"`
}
