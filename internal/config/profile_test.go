package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfiles(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.ini")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadProfileEmptyPathReturnsDefaults(t *testing.T) {
	p, err := LoadProfile("", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", p.Name)
	assert.Equal(t, 115200, p.Baud)
	assert.Equal(t, 3, p.Retries)
	assert.Equal(t, 3*time.Second, p.Timeout)
}

func TestLoadProfileReadsSection(t *testing.T) {
	path := writeProfiles(t, "[fast]\nBaud = 230400\nRetries = 5\nTimeoutMs = 1000\n")
	p, err := LoadProfile(path, "fast")
	require.NoError(t, err)
	assert.Equal(t, 230400, p.Baud)
	assert.Equal(t, 5, p.Retries)
	assert.Equal(t, time.Second, p.Timeout)
}

func TestLoadProfileMissingSectionErrors(t *testing.T) {
	path := writeProfiles(t, "[fast]\nBaud = 230400\n")
	_, err := LoadProfile(path, "slow")
	assert.Error(t, err)
}

func TestLoadProfilePartialSectionKeepsDefaults(t *testing.T) {
	path := writeProfiles(t, "[custom]\nBaud = 9600\n")
	p, err := LoadProfile(path, "custom")
	require.NoError(t, err)
	assert.Equal(t, 9600, p.Baud)
	assert.Equal(t, 3, p.Retries)
	assert.Equal(t, 3*time.Second, p.Timeout)
}

func TestOverrideAppliesOnlyNonZeroFields(t *testing.T) {
	p := defaultProfile("default")
	got := p.Override(57600, 0, 0)
	assert.Equal(t, 57600, got.Baud)
	assert.Equal(t, p.Retries, got.Retries)
	assert.Equal(t, p.Timeout, got.Timeout)
}
