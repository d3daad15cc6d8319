package models

import "time"

// WOLConfig holds Wake-on-LAN configuration used after unblocking stations.
type WOLConfig struct {
	BroadcastIP string
	Interval    time.Duration // pause between magic packets
}

// WOLResult holds the result of waking a set of stations.
type WOLResult struct {
	PacketsSent int
	Woken       []string
	Duration    time.Duration
	Error       error
}
