package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("DTX2SSC_MIDI_TEMPO", "")
	t.Setenv("DTX2SSC_MAX_UPLOAD_BYTES", "")
	t.Setenv("SENTRY_DSN", "")

	cfg := FromEnv()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 120.0, cfg.MIDITempo)
	assert.Equal(t, int64(defaultMaxUploadBytes), cfg.MaxUploadBytes)
	assert.False(t, cfg.SentryEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("DTX2SSC_MIDI_TEMPO", "150.5")
	t.Setenv("DTX2SSC_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("SENTRY_DSN", "https://key@sentry.example/1")

	cfg := FromEnv()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 150.5, cfg.MIDITempo)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.True(t, cfg.SentryEnabled())
}

func TestFromEnvInvalidNumbers(t *testing.T) {
	t.Setenv("DTX2SSC_MIDI_TEMPO", "fast")
	t.Setenv("DTX2SSC_MAX_UPLOAD_BYTES", "-5")

	cfg := FromEnv()
	assert.Equal(t, 120.0, cfg.MIDITempo)
	assert.Equal(t, int64(defaultMaxUploadBytes), cfg.MaxUploadBytes)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\n"), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// godotenv never overrides variables that are already set
	t.Setenv("PORT", "")
	require.NoError(t, os.Unsetenv("PORT"))

	cfg := Load()
	assert.Equal(t, "7070", cfg.Port)
}
