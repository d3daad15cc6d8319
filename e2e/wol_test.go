//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/fgeck/unifi-block-config/internal/models"
	"github.com/fgeck/unifi-block-config/internal/services/wol"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// listenUDP starts a loopback UDP listener and returns it with its port.
func listenUDP(t *testing.T) (*net.UDPConn, string) {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, port, err := net.SplitHostPort(conn.LocalAddr().String())
	require.NoError(t, err)

	return conn, port
}

// readPacket reads one datagram, failing the test after a short deadline.
func readPacket(t *testing.T, conn *net.UDPConn) []byte {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 512)
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)

	return buf[:n]
}

// magicPacketTarget checks the magic packet layout and returns the target address.
func magicPacketTarget(t *testing.T, pkt []byte) net.HardwareAddr {
	t.Helper()

	require.GreaterOrEqual(t, len(pkt), 102)
	assert.Equal(t, bytes.Repeat([]byte{0xff}, 6), pkt[:6])

	target := net.HardwareAddr(pkt[6:12])
	for i := 0; i < 16; i++ {
		assert.Equal(t, []byte(target), pkt[6+i*6:12+i*6], "repetition %d", i)
	}

	return target
}

func TestWOL_SendsMagicPackets_E2E(t *testing.T) {
	conn, port := listenUDP(t)

	svc := wol.NewWithClient(testLogger(), &wol.DefaultClient{Port: port})

	cfg := models.WOLConfig{BroadcastIP: "127.0.0.1"}
	macs := []string{"AA:BB:CC:DD:EE:FF", "0:11:22:33:44:5"}

	result, err := svc.WakeStations(context.Background(), cfg, macs)

	require.NoError(t, err)
	require.Nil(t, result.Error)
	assert.Equal(t, 2, result.PacketsSent)
	assert.Equal(t, macs, result.Woken)

	assert.Equal(t, "aa:bb:cc:dd:ee:ff", magicPacketTarget(t, readPacket(t, conn)).String())
	assert.Equal(t, "00:11:22:33:44:05", magicPacketTarget(t, readPacket(t, conn)).String())
}

func TestWOL_IntervalBetweenPackets_E2E(t *testing.T) {
	conn, port := listenUDP(t)

	svc := wol.NewWithClient(testLogger(), &wol.DefaultClient{Port: port})

	cfg := models.WOLConfig{BroadcastIP: "127.0.0.1", Interval: 100 * time.Millisecond}
	macs := []string{"AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:02", "AA:BB:CC:DD:EE:03"}

	result, err := svc.WakeStations(context.Background(), cfg, macs)

	require.NoError(t, err)
	require.Nil(t, result.Error)
	assert.Equal(t, 3, result.PacketsSent)
	assert.GreaterOrEqual(t, result.Duration, 200*time.Millisecond)

	for range macs {
		readPacket(t, conn)
	}
}

func TestWOL_ContextCancelledDuringInterval_E2E(t *testing.T) {
	_, port := listenUDP(t)

	svc := wol.NewWithClient(testLogger(), &wol.DefaultClient{Port: port})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cfg := models.WOLConfig{BroadcastIP: "127.0.0.1", Interval: 5 * time.Second}

	result, err := svc.WakeStations(ctx, cfg, []string{"AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:02"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.PacketsSent)
	assert.ErrorIs(t, result.Error, context.DeadlineExceeded)
}

func TestWOL_InvalidBroadcastIP_E2E(t *testing.T) {
	svc := wol.New(testLogger())

	cfg := models.WOLConfig{BroadcastIP: "not-an-ip"}

	result, err := svc.WakeStations(context.Background(), cfg, []string{"AA:BB:CC:DD:EE:FF"})

	require.NoError(t, err)
	assert.Zero(t, result.PacketsSent)
	require.NotNil(t, result.Error)
	assert.Contains(t, result.Error.Error(), "invalid broadcast IP")
}
