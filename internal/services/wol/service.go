// Package wol provides Wake-on-LAN operations for unblocked stations.
package wol

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/fgeck/unifi-block-config/internal/config"
	"github.com/fgeck/unifi-block-config/internal/models"
	"github.com/mdlayher/wol"
	"github.com/rs/zerolog"
)

// Service defines the interface for Wake-on-LAN operations.
type Service interface {
	WakeStations(ctx context.Context, cfg models.WOLConfig, macs []string) (*models.WOLResult, error)
}

// Client wraps the wol library for mocking.
type Client interface {
	Wake(broadcastIP string, mac net.HardwareAddr) error
}

// DefaultClient is the default implementation using mdlayher/wol.
type DefaultClient struct {
	// Port is the UDP destination port; empty means the discard port 9.
	Port string
}

// Wake sends a magic packet to the specified MAC address.
func (c *DefaultClient) Wake(broadcastIP string, mac net.HardwareAddr) error {
	client, err := wol.NewClient()
	if err != nil {
		return fmt.Errorf("failed to create WOL client: %w", err)
	}
	defer func() { _ = client.Close() }()

	ip := net.ParseIP(broadcastIP)
	if ip == nil {
		return fmt.Errorf("invalid broadcast IP: %s", broadcastIP)
	}

	port := c.Port
	if port == "" {
		port = "9"
	}

	if err := client.Wake(net.JoinHostPort(ip.String(), port), mac); err != nil {
		return fmt.Errorf("failed to send WOL packet: %w", err)
	}

	return nil
}

// Impl implements the WOL Service interface.
type Impl struct {
	wolClient Client
	logger    zerolog.Logger
}

// New creates a new WOL service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		wolClient: &DefaultClient{},
		logger:    logger,
	}
}

// NewWithClient creates a new WOL service with a custom client (for testing).
func NewWithClient(logger zerolog.Logger, wolClient Client) *Impl {
	return &Impl{
		wolClient: wolClient,
		logger:    logger,
	}
}

// WakeStations sends one magic packet per station, in order, stopping at the
// first failure. Errors are reported in the result.
func (s *Impl) WakeStations(ctx context.Context, cfg models.WOLConfig, macs []string) (*models.WOLResult, error) {
	result := &models.WOLResult{}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	for i, mac := range macs {
		hw, err := config.ParseAddress(mac)
		if err != nil {
			result.Error = fmt.Errorf("invalid MAC address %q: %w", mac, err)
			return result, nil
		}

		if i > 0 && cfg.Interval > 0 {
			select {
			case <-ctx.Done():
				result.Error = ctx.Err()
				return result, nil
			case <-time.After(cfg.Interval):
			}
		}

		s.logger.Info().
			Str("mac", mac).
			Str("broadcast", cfg.BroadcastIP).
			Msg("sending WOL packet")

		if err := s.wolClient.Wake(cfg.BroadcastIP, hw); err != nil {
			result.Error = fmt.Errorf("waking %s: %w", mac, err)
			return result, nil //nolint:nilerr // reported via result.Error
		}

		result.PacketsSent++
		result.Woken = append(result.Woken, mac)
	}

	s.logger.Info().
		Int("packets", result.PacketsSent).
		Msg("WOL packets sent")

	return result, nil
}
