package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "no auth configured",
			mutate:  func(_ *Config) {},
			wantErr: "no authentication method",
		},
		{
			name: "oauth only is valid",
			mutate: func(c *Config) {
				c.ClientID = "id"
				c.ClientSecret = "secret"
				c.RefreshToken = "token"
			},
		},
		{
			name: "service account only is valid",
			mutate: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
			},
		},
		{
			name: "both auth methods rejected",
			mutate: func(c *Config) {
				c.ClientID = "id"
				c.ClientSecret = "secret"
				c.RefreshToken = "token"
				c.ServiceAccountPath = "/path/to/key.json"
			},
			wantErr: "multiple authentication methods",
		},
		{
			name: "zero batch size rejected",
			mutate: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
				c.BatchSize = 0
			},
			wantErr: "batch size must be positive",
		},
		{
			name: "negative retry attempts rejected",
			mutate: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
				c.RetryAttempts = -1
			},
			wantErr: "retry attempts cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)

			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.True(t, config.EnableFormatting)
	assert.Equal(t, 1000, config.BatchSize)
	assert.Equal(t, 3, config.RetryAttempts)
}
