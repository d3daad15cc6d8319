package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/fgeck/unifi-block-config/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	doFunc   func(req *http.Request) (*http.Response, error)
	requests []*http.Request
	bodies   []string
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, string(body))
	if m.doFunc != nil {
		return m.doFunc(req)
	}
	return response(http.StatusOK), nil
}

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(`{"meta":{"rc":"ok"},"data":[]}`)),
	}
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testConfig() models.ControllerConfig {
	return models.ControllerConfig{
		BaseURL:  "https://unifi.local:8443",
		Site:     "default",
		User:     "admin",
		Password: "secret",
		ClientMACs: []string{
			"AA:BB:CC:DD:EE:01",
			"AA:BB:CC:DD:EE:02",
			"AA:BB:CC:DD:EE:03",
		},
	}
}

func loggedInSession(client HTTPClient) *Session {
	sess := NewSessionWithClient(client)
	sess.authenticated = true
	return sess
}

func TestLogin_Success(t *testing.T) {
	httpClient := &mockHTTPClient{}
	svc := New(testLogger())
	sess := NewSessionWithClient(httpClient)

	err := svc.Login(context.Background(), sess, testConfig())

	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	require.Len(t, httpClient.requests, 1)

	req := httpClient.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://unifi.local:8443/api/login", req.URL.String())
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

	var body models.LoginRequest
	require.NoError(t, json.Unmarshal([]byte(httpClient.bodies[0]), &body))
	assert.Equal(t, "admin", body.Username)
	assert.Equal(t, "secret", body.Password)
}

func TestLogin_Unauthorized(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return response(http.StatusUnauthorized), nil
		},
	}
	svc := New(testLogger())
	sess := NewSessionWithClient(httpClient)

	err := svc.Login(context.Background(), sess, testConfig())

	require.Error(t, err)
	assert.True(t, IsKind(err, UnexpectedStatus))
	assert.False(t, sess.Authenticated())
}

func TestLogin_SendFailed(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := New(testLogger())
	sess := NewSessionWithClient(httpClient)

	err := svc.Login(context.Background(), sess, testConfig())

	require.Error(t, err)
	assert.True(t, IsKind(err, SendFailed))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRun_NotLoggedIn(t *testing.T) {
	httpClient := &mockHTTPClient{}
	svc := New(testLogger())

	err := svc.Run(context.Background(), NewSessionWithClient(httpClient), models.BlockStation, testConfig())

	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Empty(t, httpClient.requests)
}

func TestRun_NilSession(t *testing.T) {
	svc := New(testLogger())

	err := svc.Run(context.Background(), nil, models.BlockStation, testConfig())

	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestRun_BlockAllInOrder(t *testing.T) {
	httpClient := &mockHTTPClient{}
	svc := New(testLogger())

	err := svc.Run(context.Background(), loggedInSession(httpClient), models.BlockStation, testConfig())

	require.NoError(t, err)
	require.Len(t, httpClient.requests, 3)

	for i, req := range httpClient.requests {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "https://unifi.local:8443/api/s/default/cmd/stamgr", req.URL.String())
		assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

		var body models.StationCommandRequest
		require.NoError(t, json.Unmarshal([]byte(httpClient.bodies[i]), &body))
		assert.Equal(t, "block-sta", body.Cmd)
		assert.Equal(t, testConfig().ClientMACs[i], body.MAC)
	}
}

func TestRun_UnblockKeyword(t *testing.T) {
	httpClient := &mockHTTPClient{}
	svc := New(testLogger())
	cfg := testConfig()
	cfg.ClientMACs = []string{"a:b:c:d:e:f"}

	err := svc.Run(context.Background(), loggedInSession(httpClient), models.UnblockStation, cfg)

	require.NoError(t, err)
	require.Len(t, httpClient.bodies, 1)
	assert.JSONEq(t, `{"cmd":"unblock-sta","mac":"a:b:c:d:e:f"}`, httpClient.bodies[0])
}

func TestRun_EmptyStationList(t *testing.T) {
	httpClient := &mockHTTPClient{}
	svc := New(testLogger())
	cfg := testConfig()
	cfg.ClientMACs = nil

	err := svc.Run(context.Background(), loggedInSession(httpClient), models.BlockStation, cfg)

	assert.NoError(t, err)
	assert.Empty(t, httpClient.requests)
}

func TestRun_FailFastOnServerError(t *testing.T) {
	calls := 0
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 2 {
				return response(http.StatusServiceUnavailable), nil
			}
			return response(http.StatusOK), nil
		},
	}
	svc := New(testLogger())

	err := svc.Run(context.Background(), loggedInSession(httpClient), models.BlockStation, testConfig())

	require.Error(t, err)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, ServerError, terr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
	assert.Equal(t, "block-sta AA:BB:CC:DD:EE:02", terr.Op)

	// The third station is never attempted.
	require.Len(t, httpClient.requests, 2)
	assert.Contains(t, httpClient.bodies[1], "AA:BB:CC:DD:EE:02")
}

func TestRun_FailFastOnSendFailure(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection reset by peer")
		},
	}
	svc := New(testLogger())

	err := svc.Run(context.Background(), loggedInSession(httpClient), models.UnblockStation, testConfig())

	assert.True(t, IsKind(err, SendFailed))
	assert.Len(t, httpClient.requests, 1)
}

func TestRun_UnexpectedStatus(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return response(http.StatusForbidden), nil
		},
	}
	svc := New(testLogger())

	err := svc.Run(context.Background(), loggedInSession(httpClient), models.BlockStation, testConfig())

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, UnexpectedStatus, terr.Kind)
	assert.Equal(t, http.StatusForbidden, terr.StatusCode)
}

func TestRun_UnknownCommand(t *testing.T) {
	httpClient := &mockHTTPClient{}
	svc := New(testLogger())

	err := svc.Run(context.Background(), loggedInSession(httpClient), models.StationCommand(42), testConfig())

	require.Error(t, err)
	assert.Empty(t, httpClient.requests)
}
