package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loginetl/pkg/errors"
)

func TestExecute_MissingConfigIsFatal(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	assert.Equal(t, errors.ExitFatal, execute([]string{"run", "-e", "http://localhost:4566/000000000000", "-q", "logins"}))
}

func TestExecute_UnknownFlagIsFatal(t *testing.T) {
	assert.Equal(t, errors.ExitFatal, execute([]string{"--no-such-flag"}))
}

func TestExecute_InvalidConfigIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  host: localhost\n"), 0o600))

	assert.Equal(t, errors.ExitFatal, execute([]string{"run", "-c", path, "-e", "http://localhost:4566/000000000000", "-q", "logins"}))
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{name: "endpoint-url", shorthand: "e", def: ""},
		{name: "queue-name", shorthand: "q", def: ""},
		{name: "wait-time", shorthand: "t", def: "10"},
		{name: "max-messages", shorthand: "m", def: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}

	config := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "c", config.Shorthand)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"run", "migrate", "check"})
}
