// Package runner orchestrates one block/unblock run against the controller.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/fgeck/unifi-block-config/internal/models"
	"github.com/fgeck/unifi-block-config/internal/services/controller"
	"github.com/fgeck/unifi-block-config/internal/services/telegram"
	"github.com/fgeck/unifi-block-config/internal/services/wol"
	"github.com/rs/zerolog"
)

// Steps reported in notifications when a run fails.
const (
	stepSession = "session"
	stepLogin   = "login"
	stepCommand = "command"
	stepWOL     = "wol"
)

// Service defines the interface for the station command runner.
type Service interface {
	Run(ctx context.Context, cmd models.StationCommand, cfg models.ControllerConfig) error
}

// Impl implements the runner Service interface.
type Impl struct {
	controllerSvc controller.Service
	wolSvc        wol.Service
	telegramSvc   telegram.Service
	logger        zerolog.Logger
}

// New creates a new runner service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		controllerSvc: controller.New(logger),
		wolSvc:        wol.New(logger),
		telegramSvc:   telegram.New(logger),
		logger:        logger,
	}
}

// NewWithServices creates a new runner service with custom services (for testing).
func NewWithServices(
	logger zerolog.Logger,
	controllerSvc controller.Service,
	wolSvc wol.Service,
	telegramSvc telegram.Service,
) *Impl {
	return &Impl{
		controllerSvc: controllerSvc,
		wolSvc:        wolSvc,
		telegramSvc:   telegramSvc,
		logger:        logger,
	}
}

// Run logs in once and applies cmd to every configured station.
// Any failure ends the run and is returned unchanged apart from step context.
func (s *Impl) Run(ctx context.Context, cmd models.StationCommand, cfg models.ControllerConfig) error {
	startTime := time.Now()
	var failedStep string
	var runErr error
	var woken int

	s.logger.Info().
		Str("command", cmd.String()).
		Str("controller", cfg.BaseURL).
		Str("site", cfg.Site).
		Int("stations", len(cfg.ClientMACs)).
		Msg("starting station run")

	defer func() {
		if cfg.Telegram != nil {
			s.sendNotification(ctx, cmd, cfg, startTime, woken, failedStep, runErr)
		}
	}()

	failedStep = stepSession
	sess, err := s.controllerSvc.BuildSession(cfg)
	if err != nil {
		runErr = fmt.Errorf("building session: %w", err)
		return runErr
	}

	failedStep = stepLogin
	if err := s.controllerSvc.Login(ctx, sess, cfg); err != nil {
		runErr = fmt.Errorf("login failed: %w", err)
		return runErr
	}

	failedStep = stepCommand
	if err := s.controllerSvc.Run(ctx, sess, cmd, cfg); err != nil {
		runErr = fmt.Errorf("%s failed: %w", cmd, err)
		return runErr
	}

	if cmd == models.UnblockStation && cfg.WOL != nil && len(cfg.ClientMACs) > 0 {
		failedStep = stepWOL
		n, err := s.runWOL(ctx, cfg)
		woken = n
		if err != nil {
			runErr = err
			return err
		}
	}

	failedStep = ""
	s.logger.Info().
		Str("command", cmd.String()).
		Dur("duration", time.Since(startTime)).
		Msg("station run completed successfully")

	return nil
}

func (s *Impl) runWOL(ctx context.Context, cfg models.ControllerConfig) (int, error) {
	s.logger.Info().
		Str("broadcast", cfg.WOL.BroadcastIP).
		Int("stations", len(cfg.ClientMACs)).
		Msg("waking unblocked stations")

	result, err := s.wolSvc.WakeStations(ctx, *cfg.WOL, cfg.ClientMACs)
	if err != nil {
		return 0, fmt.Errorf("WOL failed: %w", err)
	}
	if result.Error != nil {
		return result.PacketsSent, fmt.Errorf("WOL failed: %w", result.Error)
	}

	s.logger.Info().
		Int("packets_sent", result.PacketsSent).
		Dur("duration", result.Duration).
		Msg("WOL completed")

	return result.PacketsSent, nil
}

func (s *Impl) sendNotification(
	ctx context.Context,
	cmd models.StationCommand,
	cfg models.ControllerConfig,
	startTime time.Time,
	woken int,
	failedStep string,
	runErr error,
) {
	msg := models.TelegramMessage{
		Success:       runErr == nil,
		Command:       cmd,
		Site:          cfg.Site,
		Controller:    cfg.BaseURL,
		Stations:      cfg.ClientMACs,
		StartTime:     startTime,
		Duration:      time.Since(startTime),
		StationsWoken: woken,
	}

	if runErr != nil {
		msg.FailedStep = failedStep
		msg.ErrorMessage = runErr.Error()
	}

	result, err := s.telegramSvc.SendNotification(ctx, *cfg.Telegram, msg)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to send Telegram notification")
		return
	}
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Msg("failed to send Telegram notification")
		return
	}

	s.logger.Info().Msg("Telegram notification sent")
}
