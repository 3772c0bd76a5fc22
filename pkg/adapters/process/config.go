package process

import (
	"fmt"

	"github.com/mattn/go-shellwords"
)

// CommandConfig describes an external command bound to an action.
// Command may be a full command line; Args are appended after splitting it.
type CommandConfig struct {
	Command     string            `yaml:"command" json:"command" mapstructure:"command"`
	Args        []string          `yaml:"args" json:"args" mapstructure:"args"`
	Environment map[string]string `yaml:"env" json:"env" mapstructure:"env"`
}

// Argv returns the full argument vector.
func (c CommandConfig) Argv() ([]string, error) {
	argv, err := SplitCommand(c.Command)
	if err != nil {
		return nil, err
	}
	return append(argv, c.Args...), nil
}

// SplitCommand splits a command line into argv using shell quoting rules.
// Environment variables and backquotes are not expanded.
func SplitCommand(line string) ([]string, error) {
	argv, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("invalid command %q: %w", line, ErrEmptyCommand)
	}
	return argv, nil
}
