package process

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_Run(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	ok := NewCommand("ok", sh, []string{"-c", "echo ignored"}, nil)
	require.NoError(t, ok.Run(context.Background()))
	assert.Equal(t, "ok", ok.Name())

	fail := NewCommand("fail", sh, []string{"-c", "echo broken >&2; exit 3"}, nil)
	err = fail.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestCommand_MissingBinary(t *testing.T) {
	err := NewCommand("x", "/nonexistent/pihole", nil, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestPiholeActions(t *testing.T) {
	assert.Equal(t, "pihole -g", Refresh("", nil).String())
	assert.Equal(t, "pihole restartdns reload", Reload("", nil).String())
	assert.Equal(t, "/opt/pihole restartdns reload", Reload("/opt/pihole", nil).String())
	assert.Equal(t, "refresh", Refresh("", nil).Name())
	assert.Equal(t, "reload", Reload("", nil).Name())
}
