package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("FRAUDSCOPE_TEST_DIR", "/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde prefix", in: "~/reports/out.db", want: filepath.Join(home, "reports/out.db")},
		{name: "bare tilde", in: "~", want: home},
		{name: "env var", in: "$FRAUDSCOPE_TEST_DIR/runs.db", want: "/data/runs.db"},
		{name: "absolute untouched", in: "/var/lib/runs.db", want: "/var/lib/runs.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDefaultPathsAreAbsolute(t *testing.T) {
	assert.True(t, filepath.IsAbs(DefaultDatabasePath()))
	assert.True(t, filepath.IsAbs(DefaultTokenPath()))
}
