package translation

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"codeberg.org/snonux/agritranslate/internal/lang"
)

// LocalConfig holds configuration for offline translation packages
type LocalConfig struct {
	Command     string   // Executable that runs an installed package (default: argos-translate)
	Args        []string // Arguments placed before the language flags
	PackagesDir string   // Exported as ARGOS_PACKAGES_DIR
	Env         []string // Extra KEY=VALUE entries for the child process
}

// DefaultLocalConfig returns the default configuration for argos-translate
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Command: "argos-translate",
	}
}

// Local translates through an installed offline package by running the
// package runtime once per text.
type Local struct {
	pair   lang.Pair
	config *LocalConfig
}

// NewLocal creates a local capability for pair
func NewLocal(pair lang.Pair, config *LocalConfig) *Local {
	if config == nil {
		config = DefaultLocalConfig()
	}
	return &Local{pair: pair, config: config}
}

// Pair returns the language pair served by this capability
func (l *Local) Pair() lang.Pair {
	return l.pair
}

// Translate runs the package runtime synchronously and returns its stdout
func (l *Local) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	args := make([]string, 0, len(l.config.Args)+6)
	args = append(args, l.config.Args...)
	args = append(args,
		"--from-lang", l.pair.Source,
		"--to-lang", l.pair.Target,
		"--", text,
	)

	cmd := exec.CommandContext(ctx, l.config.Command, args...)
	cmd.Env = os.Environ()
	if l.config.PackagesDir != "" {
		cmd.Env = append(cmd.Env, "ARGOS_PACKAGES_DIR="+l.config.PackagesDir)
	}
	cmd.Env = append(cmd.Env, l.config.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w\nOutput: %s", l.config.Command, err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimRight(stdout.String(), "\r\n"), nil
}

// CheckCommand verifies that the package runtime is on PATH
func CheckCommand(command string) error {
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", command, err)
	}
	return nil
}
