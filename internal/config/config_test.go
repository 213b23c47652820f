package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	// Setenv restores whatever the environment held once the test ends.
	t.Setenv("AUTH_SECRET", "")
	require.NoError(t, os.Unsetenv("AUTH_SECRET"))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAuthSecret, cfg.Auth.Secret)
	assert.ErrorIs(t, cfg.ValidateServer(), config.ErrInsecureSecret)
}

func TestConfig_ValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{name: "Default", secret: config.DefaultAuthSecret, wantErr: true},
		{name: "DefaultPadded", secret: " change-me ", wantErr: true},
		{name: "Empty", secret: "", wantErr: true},
		{name: "Blank", secret: "   ", wantErr: true},
		{name: "Private", secret: "k3Jx9-not-the-default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.Config
			cfg.Auth.Secret = tt.secret

			err := cfg.ValidateServer()
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrInsecureSecret)
				return
			}

			assert.NoError(t, err)
		})
	}
}
