package exec_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/byte4ever/gitreq/exec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEx_success(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(context.Background(), "", "echo", "hello")

	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestEx_with_dir(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(context.Background(), "/tmp", "pwd")

	require.NoError(t, err)
	assert.Contains(t, out, "/tmp")
}

func TestEx_failure(t *testing.T) {
	t.Parallel()

	_, err := exec.Ex(context.Background(), "", "false")

	require.Error(t, err)
	assert.Equal(t, 1, exec.ExitCode(err))
}

func TestOut_trims_stdout(t *testing.T) {
	t.Parallel()

	out, err := exec.Out(
		context.Background(), "", "printf", "  value\n",
	)

	require.NoError(t, err)
	assert.Equal(t, "value", out)
}

func TestOut_failure_carries_stderr(t *testing.T) {
	t.Parallel()

	_, err := exec.Out(
		context.Background(), "",
		"sh", "-c", "echo boom >&2; exit 3",
	)

	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 3, exec.ExitCode(err))
}

func TestExitCode_not_a_process(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, exec.ExitCode(assert.AnError))
}

//nolint:paralleltest // swaps the default logger
func TestOutHidden_masks_logs_and_errors(t *testing.T) {
	var buf bytes.Buffer

	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(
		&buf, &slog.HandlerOptions{Level: slog.LevelDebug},
	)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	const secret = "s3cr3t-value"

	out, err := exec.OutHidden(
		context.Background(), "", secret,
		"printf", "%s", secret,
	)
	require.NoError(t, err)
	assert.Equal(t, secret, out)

	_, err = exec.OutHidden(
		context.Background(), "", secret,
		"sh", "-c", "echo $0 >&2; exit 2", secret,
	)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), secret)
	assert.Contains(t, err.Error(), exec.Mask)
	assert.Equal(t, 2, exec.ExitCode(err))

	assert.Contains(t, buf.String(), "msg=executing")
	assert.Contains(t, buf.String(), exec.Mask)
	assert.NotContains(t, buf.String(), secret)
}
