package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-live/internal/game"
)

// Config is the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains process-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// GameSettings carries the table rules applied to every created game
type GameSettings struct {
	StartingStack      int     `hcl:"starting_stack,optional"`
	SmallBlind         int     `hcl:"small_blind,optional"`
	BigBlind           int     `hcl:"big_blind,optional"`
	BlindEscalation    *bool   `hcl:"blind_escalation,optional"`
	HandsPerBlindLevel int     `hcl:"hands_per_blind_level,optional"`
	BlindMultiplier    float64 `hcl:"blind_multiplier,optional"`
	EventHistoryCap    int     `hcl:"event_history_cap,optional"`
	HandHistoryCap     int     `hcl:"hand_history_cap,optional"`
	StepTimeoutSecs    int     `hcl:"step_timeout_seconds,optional"`
	AIActionDelayMs    int     `hcl:"ai_action_delay_ms,optional"`
	Assertions         *bool   `hcl:"assertions,optional"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			StartingStack:      1000,
			SmallBlind:         5,
			BigBlind:           10,
			HandsPerBlindLevel: 10,
			BlindMultiplier:    2.0,
			EventHistoryCap:    1000,
			HandHistoryCap:     100,
			StepTimeoutSecs:    60,
			AIActionDelayMs:    500,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.StartingStack == 0 {
		config.Game.StartingStack = defaults.Game.StartingStack
	}
	if config.Game.SmallBlind == 0 {
		config.Game.SmallBlind = defaults.Game.SmallBlind
	}
	if config.Game.BigBlind == 0 {
		config.Game.BigBlind = defaults.Game.BigBlind
	}
	if config.Game.HandsPerBlindLevel == 0 {
		config.Game.HandsPerBlindLevel = defaults.Game.HandsPerBlindLevel
	}
	if config.Game.BlindMultiplier == 0 {
		config.Game.BlindMultiplier = defaults.Game.BlindMultiplier
	}
	if config.Game.EventHistoryCap == 0 {
		config.Game.EventHistoryCap = defaults.Game.EventHistoryCap
	}
	if config.Game.HandHistoryCap == 0 {
		config.Game.HandHistoryCap = defaults.Game.HandHistoryCap
	}
	if config.Game.StepTimeoutSecs == 0 {
		config.Game.StepTimeoutSecs = defaults.Game.StepTimeoutSecs
	}
	if config.Game.AIActionDelayMs == 0 {
		config.Game.AIActionDelayMs = defaults.Game.AIActionDelayMs
	}

	return &config, nil
}

// Validate checks the configuration for contradictions
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.Game.BigBlind <= c.Game.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if c.Game.StartingStack < c.Game.BigBlind {
		return fmt.Errorf("starting stack %d cannot cover the big blind %d", c.Game.StartingStack, c.Game.BigBlind)
	}
	if c.Game.BlindMultiplier < 1 {
		return fmt.Errorf("blind multiplier must be at least 1, got %v", c.Game.BlindMultiplier)
	}
	return nil
}

// Addr returns the full listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameConfig converts the settings into the engine's config
func (c *Config) GameConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.StartingStack = c.Game.StartingStack
	cfg.SmallBlind = c.Game.SmallBlind
	cfg.BigBlind = c.Game.BigBlind
	cfg.HandsPerBlindLevel = c.Game.HandsPerBlindLevel
	cfg.BlindMultiplier = c.Game.BlindMultiplier
	cfg.EventHistoryCap = c.Game.EventHistoryCap
	cfg.HandHistoryCap = c.Game.HandHistoryCap
	if c.Game.BlindEscalation != nil {
		cfg.BlindEscalation = *c.Game.BlindEscalation
	}
	if c.Game.Assertions != nil {
		cfg.Assertions = *c.Game.Assertions
	}
	return cfg
}

// StepTimeout returns the step-mode continue timeout
func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.Game.StepTimeoutSecs) * time.Second
}

// AIActionDelay returns the cosmetic pause between AI actions
func (c *Config) AIActionDelay() time.Duration {
	return time.Duration(c.Game.AIActionDelayMs) * time.Millisecond
}
