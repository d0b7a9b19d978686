// Package process runs the Pi-hole command line as external actions.
package process

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bft-labs/gravityopt/internal/ports"
	"github.com/bft-labs/gravityopt/pkg/log"
)

// DefaultBinary is the Pi-hole command line tool.
const DefaultBinary = "pihole"

var _ ports.Action = (*Command)(nil)

// Command is an action that runs a program and waits for it. Its standard
// output is discarded; standard error is kept for the error message.
type Command struct {
	name   string
	path   string
	args   []string
	logger log.Logger
}

// NewCommand creates an action named name that runs path with args.
func NewCommand(name, path string, args []string, logger log.Logger) *Command {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Command{name: name, path: path, args: args, logger: logger}
}

// Refresh returns the action that rebuilds gravity from the upstream lists.
func Refresh(binary string, logger log.Logger) *Command {
	if binary == "" {
		binary = DefaultBinary
	}
	return NewCommand("refresh", binary, []string{"-g"}, logger)
}

// Reload returns the action that makes the resolver pick up the new gravity.
func Reload(binary string, logger log.Logger) *Command {
	if binary == "" {
		binary = DefaultBinary
	}
	return NewCommand("reload", binary, []string{"restartdns", "reload"}, logger)
}

// Name implements ports.Action.
func (c *Command) Name() string { return c.name }

// String returns the command line.
func (c *Command) String() string {
	return strings.Join(append([]string{c.path}, c.args...), " ")
}

// Run implements ports.Action.
func (c *Command) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.path, c.args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Debug("running command", log.String("action", c.name), log.String("cmd", c.String()))
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.String(), err, msg)
		}
		return fmt.Errorf("%s: %w", c.String(), err)
	}
	return nil
}
