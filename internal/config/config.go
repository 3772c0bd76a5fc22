package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/cback/pkg/adapters/process"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no configuration file is given.
const DefaultPath = "/etc/cback.yaml"

// Lock defaults.
const (
	DefaultLockKey = "cback"
	DefaultLockTTL = 12 * time.Hour
)

// ErrInvalid is returned when the configuration parses but is not usable.
var ErrInvalid = errors.New("invalid configuration")

// Config is the parsed configuration file.
type Config struct {
	Options    Options    `mapstructure:"options"`
	Extensions Extensions `mapstructure:"extensions"`
	Peers      []Peer     `mapstructure:"peers" validate:"dive"`
	Lock       *Lock      `mapstructure:"lock"`
	Metrics    Metrics    `mapstructure:"metrics"`

	path string
}

// Options are the global settings. Peers fall back to them.
type Options struct {
	WorkingDir     string                           `mapstructure:"working_dir"`
	BackupUser     string                           `mapstructure:"backup_user"`
	RshCommand     string                           `mapstructure:"rsh_command"`
	CbackCommand   string                           `mapstructure:"cback_command"`
	ManagedActions []string                         `mapstructure:"managed_actions"`
	Hooks          []Hook                           `mapstructure:"hooks" validate:"dive"`
	ActionCommands map[string]process.CommandConfig `mapstructure:"action_commands"`
}

// Hook attaches a command to an action. Exactly one of Before and After is set.
type Hook struct {
	Action string `mapstructure:"action" validate:"required"`
	Before string `mapstructure:"before"`
	After  string `mapstructure:"after"`
}

// Extensions declares extended actions and how they are ordered.
type Extensions struct {
	OrderMode string           `mapstructure:"order_mode" validate:"omitempty,oneof=index dependency"`
	Actions   []ExtendedAction `mapstructure:"actions" validate:"dive"`
}

// ExtendedAction is one user-defined action.
type ExtendedAction struct {
	Name     string       `mapstructure:"name" validate:"required"`
	Module   string       `mapstructure:"module" validate:"required"`
	Function string       `mapstructure:"function" validate:"required"`
	Index    int          `mapstructure:"index" validate:"gte=0"`
	Depends  Dependencies `mapstructure:"depends"`
}

// Dependencies are used in dependency order mode.
type Dependencies struct {
	Before []string `mapstructure:"before"`
	After  []string `mapstructure:"after"`
}

// Peer is a remote client. Only managed peers take part in managed actions.
type Peer struct {
	Name           string   `mapstructure:"name" validate:"required"`
	Managed        bool     `mapstructure:"managed"`
	RemoteUser     string   `mapstructure:"remote_user"`
	RshCommand     string   `mapstructure:"rsh_command"`
	CbackCommand   string   `mapstructure:"cback_command"`
	ManagedActions []string `mapstructure:"managed_actions"`
}

// Lock configures the optional Redis run lock.
type Lock struct {
	RedisAddr string        `mapstructure:"redis_addr" validate:"required"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db" validate:"gte=0"`
	Key       string        `mapstructure:"key"`
	TTL       time.Duration `mapstructure:"ttl" validate:"gte=0"`
	Wait      time.Duration `mapstructure:"wait" validate:"gte=0"`
}

// Metrics configures optional Prometheus exposure.
type Metrics struct {
	Textfile string `mapstructure:"textfile"`
	Listen   string `mapstructure:"listen" validate:"omitempty,hostname_port"`
}

// Load reads, decodes and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path is the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) applyDefaults() {
	if c.Extensions.OrderMode == "" {
		c.Extensions.OrderMode = "index"
	}
	if c.Lock != nil {
		if c.Lock.Key == "" {
			c.Lock.Key = DefaultLockKey
		}
		if c.Lock.TTL == 0 {
			c.Lock.TTL = DefaultLockTTL
		}
	}
}
