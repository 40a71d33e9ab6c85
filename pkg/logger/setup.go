package logger

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Setup builds a logger from the values of the persistent log flags and makes
// it the default
func Setup(level string, json, source bool) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Level = lvl
	cfg.JSON = json
	cfg.AddSource = source
	l := NewLogger(cfg)
	SetDefault(l)
	return l, nil
}

// FlagsFromCommand reads --log-level, --log-json and --log-source
func FlagsFromCommand(cmd *cobra.Command) (string, bool, bool, error) {
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-json flag: %w", err)
	}
	logSource, err := cmd.Flags().GetBool("log-source")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-source flag: %w", err)
	}
	return logLevel, logJSON, logSource, nil
}
