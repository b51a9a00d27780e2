package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poopay/poopay-realtime/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	os.Exit(m.Run())
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults with token",
			envVars: map[string]string{
				"POOPAY_AUTH_TOKEN": "token-value-123",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://localhost:3333", cfg.API.BaseURL)
				assert.Equal(t, "http://localhost:3333", cfg.Live.URL)
				assert.Equal(t, 5, cfg.Live.ReconnectAttempts)
				assert.Equal(t, 1000, cfg.Live.ReconnectDelayMS)
				assert.Equal(t, "127.0.0.1:8090", cfg.Server.Address)
				assert.True(t, cfg.IsDevelopment())
			},
		},
		{
			name: "URLBACK fallback and live URL derivation",
			envVars: map[string]string{
				"POOPAY_AUTH_TOKEN": "token-value-123",
				"URLBACK":           "https://api.poopay.app/api",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://api.poopay.app/api", cfg.API.BaseURL)
				assert.Equal(t, "https://api.poopay.app", cfg.Live.URL)
			},
		},
		{
			name: "explicit live settings",
			envVars: map[string]string{
				"POOPAY_AUTH_TOKEN":              "token-value-123",
				"POOPAY_USER_ID":                 "42",
				"POOPAY_LIVE_URL":                "ws://live.local:4000",
				"POOPAY_LIVE_RECONNECT_ATTEMPTS": "3",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "ws://live.local:4000", cfg.Live.URL)
				assert.Equal(t, 3, cfg.Live.ReconnectAttempts)
				assert.Equal(t, "42", cfg.Auth.UserID)
			},
		},
		{
			name:        "missing token",
			envVars:     map[string]string{},
			expectError: true,
		},
		{
			name: "invalid API URL",
			envVars: map[string]string{
				"POOPAY_AUTH_TOKEN": "token-value-123",
				"POOPAY_API_URL":    "ftp://nope",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	path := filepath.Join(dir, "poopay.yaml")
	content := []byte("api:\n  base_url: http://10.0.0.5:3333\nlive:\n  reconnect_attempts: 2\nauth:\n  token: file-token-123\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("POOPAY_CONFIG", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:3333", cfg.API.BaseURL)
	assert.Equal(t, 2, cfg.Live.ReconnectAttempts)
	assert.Equal(t, "file-token-123", cfg.Auth.Token)
}

func TestDeriveLiveURL(t *testing.T) {
	assert.Equal(t, "http://host:3333", DeriveLiveURL("http://host:3333/api"))
	assert.Equal(t, "http://host:3333", DeriveLiveURL("http://host:3333/api/"))
	assert.Equal(t, "http://host:3333", DeriveLiveURL("http://host:3333"))
}

func TestConfig_YAMLMasksToken(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{Token: "eyJhbGciOiJIUzI1NiJ9.secret.sig"}}
	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.Contains(t, string(out), "eyJ...sig")
}
