package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("API_BASE_URL", "https://hr.example.com")
	t.Setenv("USER_ID", "user-1")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8686, cfg.App.Port)
	assert.Equal(t, "native", cfg.Capture.Platform)
	assert.Equal(t, "granted", cfg.Capture.Permission)
	assert.Equal(t, int64(2000), cfg.Location.Timeout.Milliseconds())
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("USER_ID", "user-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingUserID(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://hr.example.com")
	t.Setenv("USER_ID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidPlatform(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CAPTURE_PLATFORM", "desktop")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_CameraPermission(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("CAMERA_PERMISSION", "denied")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "denied", cfg.Capture.Permission)

	t.Setenv("CAMERA_PERMISSION", "sometimes")
	_, err = Load()
	assert.Error(t, err)
}
