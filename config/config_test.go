package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, RegisterFlags(cmd))
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	cmd := newTestCommand(t, "--mbox", "inbox.mbox")

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "inbox.mbox", cfg.MboxPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100, cfg.ProgressEvery)
	assert.Equal(t, int64(0), cfg.MaxRecordSize)
	assert.Empty(t, cfg.IncludeHeader)
}

func TestLoadConfigNormalizesLogLevel(t *testing.T) {
	cmd := newTestCommand(t, "--mbox", "inbox.mbox", "--log-level", "WARNING")

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing mbox", []string{"--mbox", " "}, "--mbox is required"},
		{"bad log level", []string{"--mbox", "x", "--log-level", "chatty"}, "invalid --log-level"},
		{"zero progress", []string{"--mbox", "x", "--progress-every", "0"}, "--progress-every must be positive"},
		{"negative record size", []string{"--mbox", "x", "--max-record-size", "-1"}, "--max-record-size must not be negative"},
		{
			"mixed filter modes",
			[]string{"--mbox", "x", "--include-body", "a", "--exclude-header", "b"},
			"mutually exclusive",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := newTestCommand(t, tc.args...)
			_, err := LoadConfig(cmd)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
