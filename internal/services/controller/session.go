package controller

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/fgeck/unifi-block-config/internal/models"
	"golang.org/x/net/publicsuffix"
)

const (
	dialTimeout         = 30 * time.Second
	keepAlive           = 30 * time.Second
	tlsHandshakeTimeout = 10 * time.Second
)

// HTTPClient allows mocking HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Session is the HTTP transport and authentication state for one run.
// The login cookie lives in the client's cookie jar and is sent on every
// later request. A Session is not safe for concurrent use.
type Session struct {
	client        HTTPClient
	authenticated bool
}

// NewSession builds a session for the controller described by cfg.
func NewSession(cfg models.ControllerConfig) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Session{
		client: &http.Client{
			Jar:       jar,
			Transport: newTransport(cfg.AcceptInvalidCerts),
		},
	}, nil
}

// NewSessionWithClient creates a session around a custom HTTP client (for testing).
func NewSessionWithClient(client HTTPClient) *Session {
	return &Session{client: client}
}

// Authenticated reports whether Login has succeeded on this session.
func (s *Session) Authenticated() bool {
	return s != nil && s.authenticated
}

func newTransport(acceptInvalidCerts bool) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: keepAlive,
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn, nil
		},
		TLSHandshakeTimeout: tlsHandshakeTimeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: acceptInvalidCerts, //nolint:gosec // opt-in for self-signed controllers
		},
		DisableCompression: true,
		ForceAttemptHTTP2:  true,
	}
}
