// Package models contains the data structures used throughout unifi-block-config.
package models

// ControllerConfig holds the validated configuration for one run against a controller.
type ControllerConfig struct {
	BaseURL            string
	Site               string
	AcceptInvalidCerts bool
	User               string
	Password           string
	ClientMACs         []string        // order is preserved, commands are issued in this order
	WOL                *WOLConfig      // nil if not configured
	Telegram           *TelegramConfig // nil if not configured
}
