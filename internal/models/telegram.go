package models

import "time"

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// TelegramMessage holds the data for a run notification.
type TelegramMessage struct {
	Success    bool
	Command    StationCommand
	Site       string
	Controller string
	Stations   []string
	StartTime  time.Time
	Duration   time.Duration

	// Wake stats (unblock with wol configured).
	StationsWoken int

	// Error info (if failed).
	ErrorMessage string
	FailedStep   string
}

// TelegramResult holds the result of a Telegram notification.
type TelegramResult struct {
	MessageSent bool
	Error       error
}
