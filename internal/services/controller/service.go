// Package controller talks to the UniFi controller's session-based HTTP API.
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fgeck/unifi-block-config/internal/models"
	"github.com/rs/zerolog"
)

// The controller parses the JSON body regardless of this header.
const formContentType = "application/x-www-form-urlencoded"

// bodyLogLimit bounds how much of a response body is read for debug logging.
const bodyLogLimit = 4096

// Service defines the interface for controller operations.
type Service interface {
	BuildSession(cfg models.ControllerConfig) (*Session, error)
	Login(ctx context.Context, sess *Session, cfg models.ControllerConfig) error
	Run(ctx context.Context, sess *Session, cmd models.StationCommand, cfg models.ControllerConfig) error
}

// Impl implements the controller Service interface.
type Impl struct {
	logger zerolog.Logger
}

// New creates a new controller service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{logger: logger}
}

// BuildSession creates the session used for the rest of the run.
func (s *Impl) BuildSession(cfg models.ControllerConfig) (*Session, error) {
	s.logger.Debug().
		Str("base_url", cfg.BaseURL).
		Bool("accept_invalid_certs", cfg.AcceptInvalidCerts).
		Msg("building controller session")

	return NewSession(cfg)
}

// Login authenticates the session. On failure the session stays unauthenticated
// and Run refuses to use it.
func (s *Impl) Login(ctx context.Context, sess *Session, cfg models.ControllerConfig) error {
	loginURL := fmt.Sprintf("%s/api/login", cfg.BaseURL)

	s.logger.Info().
		Str("url", loginURL).
		Str("user", cfg.User).
		Msg("logging in to controller")

	body := models.LoginRequest{
		Username: cfg.User,
		Password: cfg.Password,
	}
	if err := s.post(ctx, sess, "login", loginURL, body); err != nil {
		return err
	}

	sess.authenticated = true
	s.logger.Info().Msg("controller login successful")

	return nil
}

// Run issues cmd for every configured station, in configuration order.
// The first failure aborts the run; later stations are not attempted.
func (s *Impl) Run(ctx context.Context, sess *Session, cmd models.StationCommand, cfg models.ControllerConfig) error {
	if !sess.Authenticated() {
		return ErrNotLoggedIn
	}

	keyword := cmd.Keyword()
	if keyword == "" {
		return fmt.Errorf("unknown station command %v", cmd)
	}

	stationURL := fmt.Sprintf("%s/api/s/%s/cmd/stamgr", cfg.BaseURL, cfg.Site)

	for _, mac := range cfg.ClientMACs {
		s.logger.Info().
			Str("command", cmd.String()).
			Str("mac", mac).
			Msg("sending station command")

		body := models.StationCommandRequest{
			Cmd: keyword,
			MAC: mac,
		}
		if err := s.post(ctx, sess, keyword+" "+mac, stationURL, body); err != nil {
			return err
		}
	}

	s.logger.Info().
		Str("command", cmd.String()).
		Int("stations", len(cfg.ClientMACs)).
		Msg("station commands completed")

	return nil
}

func (s *Impl) post(ctx context.Context, sess *Session, op, url string, body any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", formContentType)

	resp, err := sess.client.Do(req)
	if err == nil {
		defer drainAndClose(resp.Body)
	}

	if cerr := Classify(op, resp, err); cerr != nil {
		s.logFailure(cerr)
		return cerr
	}

	if e := s.logger.Debug(); e.Enabled() {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, bodyLogLimit))
		e.Str("op", op).
			Int("status", resp.StatusCode).
			Str("body", string(text)).
			Msg("request succeeded")
	}

	return nil
}

func (s *Impl) logFailure(err error) {
	switch {
	case IsKind(err, SendFailed):
		s.logger.Warn().Err(err).Msg("sending request failed")
	case IsKind(err, ServerError):
		s.logger.Error().Err(err).Msg("controller server error")
	default:
		s.logger.Error().Err(err).Msg("unexpected controller response")
	}
}

func drainAndClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, bodyLogLimit))
	_ = rc.Close()
}
