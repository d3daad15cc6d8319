package main

import (
	"context"
	"errors"

	"github.com/fgeck/unifi-block-config/internal/config"
	"github.com/fgeck/unifi-block-config/internal/models"
	"github.com/fgeck/unifi-block-config/internal/services/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var commandName string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Block or unblock the configured stations",
	Long: `Execute one station run:
1. Load and validate the configuration
2. Log in to the controller
3. Send block-sta or unblock-sta for every station, in file order
4. Wake-on-LAN the stations after an unblock (if configured)
5. Send Telegram notification (if configured)`,
	RunE: runStations,
}

func init() {
	runCmd.Flags().StringVarP(&commandName, "command", "x", "", "command to apply: block or unblock (required)")
	_ = runCmd.MarkFlagRequired("command")
}

func runStations(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		log.Error().Msg("config file is required")
		return errors.New("config file is required")
	}

	stationCmd, err := models.ParseStationCommand(commandName)
	if err != nil {
		log.Error().Err(err).Msg("invalid command")
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Info().
		Str("config", configFile).
		Str("controller", cfg.BaseURL).
		Str("site", cfg.Site).
		Msg("configuration loaded")

	runnerSvc := runner.New(log.Logger)
	if err := runnerSvc.Run(context.Background(), stationCmd, *cfg); err != nil {
		log.Error().Err(err).Msg("problems executing command")
		return err
	}

	log.Info().Str("command", stationCmd.String()).Msg("run completed successfully")
	return nil
}

// loadConfig parses and validates configFile, applying the credential flags.
func loadConfig() (*models.ControllerConfig, error) {
	parser := config.NewParser()
	raw, err := parser.LoadFile(configFile)
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to load config")
		return nil, err
	}

	cfg, err := config.Validate(raw, user, password)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return nil, err
	}

	return cfg, nil
}
