package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshr/hrdesk/pkg/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model.Name)
	assert.Equal(t, 8, cfg.Model.MaxToolRounds)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL.Std())
	assert.Equal(t, 20, cfg.Sessions.MaxTurns)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9090"
model:
  name: gemini-2.5-pro
  timeout: 30s
cache:
  ttl: 2m
extra_faq:
  - patterns: ["\\bparking\\b"]
    answer: "Parking is on level B2."
permissions:
  employee:
    - view_own_data
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model.Name)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout.Std())
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL.Std())
	// Untouched fields keep their defaults.
	assert.Equal(t, "hrdesk.db", cfg.DBPath)
	assert.Equal(t, 8, cfg.Model.MaxToolRounds)

	require.Len(t, cfg.ExtraFAQ, 1)
	assert.Equal(t, "Parking is on level B2.", cfg.ExtraFAQ[0].Answer)
	assert.Equal(t, []string{"view_own_data"}, cfg.Permissions[domain.RoleEmployee])
}

func TestLoadRejectsBadConfig(t *testing.T) {
	_, err := Load(writeConfig(t, `listen_addr: ""`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "permissions:\n  contractor: [view_employee]\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "model: [not, a, map]"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	key, err := APIKey()
	require.NoError(t, err)
	assert.Equal(t, "test-key", key)

	t.Setenv("GEMINI_API_KEY", "")
	_, err = APIKey()
	assert.Error(t, err)
}
