// Package bim turns stored BIM model files into parameter trees by running
// an external converter.
package bim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrNotConfigured is returned when no converter command is set up
	ErrNotConfigured = errors.New("bim tree generation is not configured")

	// ErrGenerationFailed wraps every failure of the converter itself
	ErrGenerationFailed = errors.New("bim tree generation failed")
)

// maxStderr bounds how much converter stderr ends up in an error
const maxStderr = 2048

// TreeGenerator produces the parameter tree JSON for a model file on disk
type TreeGenerator interface {
	Generate(ctx context.Context, localPath string) (json.RawMessage, error)
}

// CommandGenerator runs a command with the model path as its last argument
// and takes stdout as the tree
type CommandGenerator struct {
	argv    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommandGenerator parses command into argv. An empty command yields a
// generator that always returns ErrNotConfigured.
func NewCommandGenerator(command string, timeout time.Duration, logger *slog.Logger) *CommandGenerator {
	return &CommandGenerator{
		argv:    strings.Fields(command),
		timeout: timeout,
		logger:  logger,
	}
}

// Generate runs the converter on localPath. Output that is not valid JSON is an error.
func (g *CommandGenerator) Generate(ctx context.Context, localPath string) (json.RawMessage, error) {
	if len(g.argv) == 0 {
		return nil, ErrNotConfigured
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	args := append(append([]string{}, g.argv[1:]...), localPath)
	cmd := exec.CommandContext(ctx, g.argv[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	g.logger.Debug("bim converter finished",
		"command", g.argv[0],
		"duration", time.Since(start),
		"exit_error", err,
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w: %s", ErrGenerationFailed, err, truncate(stderr.String(), maxStderr))
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if !json.Valid(out) {
		return nil, fmt.Errorf("%w: converter output is not valid JSON", ErrGenerationFailed)
	}
	return json.RawMessage(out), nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
