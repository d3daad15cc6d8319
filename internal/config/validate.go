package config

import (
	"errors"

	"github.com/fgeck/unifi-block-config/internal/models"
)

// Validate checks a parsed configuration and resolves credentials.
// Addresses are checked first, in file order, then user, then password.
// userOverride and passwordOverride are used only when the file leaves
// the corresponding field empty.
func Validate(raw *RawConfig, userOverride, passwordOverride string) (*models.ControllerConfig, error) {
	if raw == nil {
		return nil, &Error{Kind: KindMalformed, Err: errors.New("configuration is nil")}
	}

	for _, mac := range raw.ClientMACs {
		if err := ValidateAddress(mac); err != nil {
			return nil, &Error{Kind: KindBadAddress, Address: mac, Err: err}
		}
	}

	user := raw.User
	if user == "" {
		user = userOverride
	}
	if user == "" {
		return nil, &Error{Kind: KindMissingCredential, Field: "user"}
	}

	password := raw.Password
	if password == "" {
		password = passwordOverride
	}
	if password == "" {
		return nil, &Error{Kind: KindMissingCredential, Field: "password"}
	}

	cfg := &models.ControllerConfig{
		BaseURL:            raw.BaseURL,
		Site:               raw.Site,
		AcceptInvalidCerts: raw.AcceptInvalidCerts,
		User:               user,
		Password:           password,
		ClientMACs:         append([]string(nil), raw.ClientMACs...),
	}

	if raw.WOL != nil {
		cfg.WOL = &models.WOLConfig{
			BroadcastIP: raw.WOL.BroadcastIP,
			Interval:    raw.WOL.Interval,
		}
	}

	if raw.Telegram != nil {
		cfg.Telegram = &models.TelegramConfig{
			BotToken: raw.Telegram.BotToken,
			ChatID:   raw.Telegram.ChatID,
		}
	}

	return cfg, nil
}
