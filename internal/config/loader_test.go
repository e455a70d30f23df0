package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, EditionEnhanced, cfg.Edition)
	assert.Equal(t, ExposurePublic, cfg.Tools.Exposure)
	assert.Equal(t, 10, cfg.Pool.MaxSize)
	assert.Equal(t, "SELECT 1 FROM DUAL", cfg.Pool.ValidationQuery)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default plus required fields",
			mutate:  func(c *Config) { c.Oracle.URL = "db:1521/ORCLPDB1"; c.Oracle.User = "app" },
			wantErr: false,
		},
		{
			name:    "missing oracle url",
			mutate:  func(c *Config) { c.Oracle.User = "app" },
			wantErr: true,
		},
		{
			name:    "missing oracle user",
			mutate:  func(c *Config) { c.Oracle.URL = "db:1521/ORCLPDB1" },
			wantErr: true,
		},
		{
			name: "bad edition",
			mutate: func(c *Config) {
				c.Oracle.URL = "db:1521/ORCLPDB1"
				c.Oracle.User = "app"
				c.Edition = "unknown"
			},
			wantErr: true,
		},
		{
			name: "pool min_idle exceeds max_size",
			mutate: func(c *Config) {
				c.Oracle.URL = "db:1521/ORCLPDB1"
				c.Oracle.User = "app"
				c.Pool.MinIdle = c.Pool.MaxSize + 1
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadAppliesProfileThenEnv(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.yaml")
	content := []byte("oracle:\n  url: \"profile-host:1521/ORCLPDB1\"\n  user: \"profile_user\"\nedition: enterprise\npool:\n  max_size: 25\n")
	require.NoError(t, os.WriteFile(profile, content, 0o600))

	t.Setenv("ORACLE_USER", "env_user")

	cfg, err := Load(profile)
	require.NoError(t, err)
	assert.Equal(t, "profile-host:1521/ORCLPDB1", cfg.Oracle.URL)
	assert.Equal(t, "env_user", cfg.Oracle.User, "environment must win over profile file")
	assert.Equal(t, EditionEnterprise, cfg.Edition)
	assert.Equal(t, 25, cfg.Pool.MaxSize)
}

func TestLoadMissingProfileFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestLoadNoProfileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("ORACLE_URL", "host:1521/ORCLPDB1")
	t.Setenv("ORACLE_USER", "app")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "host:1521/ORCLPDB1", cfg.Oracle.URL)
	assert.Equal(t, EditionEnhanced, cfg.Edition)
}
