// Package config provides configuration file parsing and validation.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RawConfig is the configuration file as written, before credential resolution.
type RawConfig struct {
	BaseURL            string       `mapstructure:"base_url"`
	Site               string       `mapstructure:"site"`
	AcceptInvalidCerts bool         `mapstructure:"accept_invalid_certs"`
	User               string       `mapstructure:"user"`
	Password           string       `mapstructure:"password"`
	ClientMACs         []string     `mapstructure:"client_macs"`
	WOL                *RawWOL      `mapstructure:"wol"`
	Telegram           *RawTelegram `mapstructure:"telegram"`
}

// RawWOL is the optional wol section.
type RawWOL struct {
	BroadcastIP string        `mapstructure:"broadcast_ip"`
	Interval    time.Duration `mapstructure:"interval"`
}

// RawTelegram is the optional telegram section.
type RawTelegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	return &Parser{v: v}
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*RawConfig, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, &Error{Kind: KindMalformed, Err: fmt.Errorf("reading config file: %w", err)}
	}

	return p.parse()
}

// LoadReader loads configuration from a reader (useful for testing).
func (p *Parser) LoadReader(content string) (*RawConfig, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, &Error{Kind: KindMalformed, Err: fmt.Errorf("reading config: %w", err)}
	}

	return p.parse()
}

func (p *Parser) parse() (*RawConfig, error) {
	cfg := &RawConfig{}

	// Unknown keys are an error, not silently ignored.
	if err := p.v.UnmarshalExact(cfg); err != nil {
		return nil, &Error{Kind: KindMalformed, Err: fmt.Errorf("decoding config: %w", err)}
	}

	if cfg.BaseURL == "" {
		return nil, &Error{Kind: KindMissingField, Field: "base_url"}
	}
	if cfg.Site == "" {
		return nil, &Error{Kind: KindMissingField, Field: "site"}
	}

	cfg.User = p.expandEnv(cfg.User)
	cfg.Password = p.expandEnv(cfg.Password)

	// An empty "wol: {}" section carries no leaf keys, so it is not decoded.
	if cfg.WOL == nil && p.v.IsSet("wol") {
		cfg.WOL = &RawWOL{}
	}
	if cfg.WOL != nil {
		if cfg.WOL.BroadcastIP == "" {
			cfg.WOL.BroadcastIP = "255.255.255.255"
		}
		if net.ParseIP(cfg.WOL.BroadcastIP) == nil {
			return nil, &Error{
				Kind:  KindMissingField,
				Field: "wol.broadcast_ip",
				Err:   fmt.Errorf("invalid IP %q", cfg.WOL.BroadcastIP),
			}
		}
		if cfg.WOL.Interval < 0 {
			return nil, &Error{Kind: KindMalformed, Err: fmt.Errorf("wol.interval must not be negative")}
		}
	}

	if cfg.Telegram == nil && p.v.IsSet("telegram") {
		cfg.Telegram = &RawTelegram{}
	}
	if cfg.Telegram != nil {
		cfg.Telegram.BotToken = p.expandEnv(cfg.Telegram.BotToken)
		cfg.Telegram.ChatID = p.expandEnv(cfg.Telegram.ChatID)

		if cfg.Telegram.BotToken == "" {
			return nil, &Error{Kind: KindMissingField, Field: "telegram.bot_token"}
		}
		if cfg.Telegram.ChatID == "" {
			return nil, &Error{Kind: KindMissingField, Field: "telegram.chat_id"}
		}
	}

	return cfg, nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}
