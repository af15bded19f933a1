package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKVPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "local.yaml")
	kv := NewFileKV(path)

	_, ok, err := kv.Get(SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(SessionKey, "token-1"))
	require.NoError(t, kv.Set(ThemeKey, "dark"))

	reopened := NewFileKV(path)
	v, ok, err := reopened.Get(SessionKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-1", v)

	require.NoError(t, reopened.Delete(SessionKey))
	require.NoError(t, reopened.Delete("never-set"))
	_, ok, err = kv.Get(SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme: dark")
}

func TestFileKVRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	_, _, err := NewFileKV(path).Get(SessionKey)
	assert.Error(t, err)
}

func TestPreferencesRoundTrip(t *testing.T) {
	kv := NewMemoryKV()

	p, err := LoadPreferences(kv)
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), p)

	p.Theme = ThemeDark
	p.Language = "am"
	p.Notifications.Promotions = false
	p.IsPublicProfile = false
	require.NoError(t, SavePreferences(kv, p))

	raw, _, _ := kv.Get(NotificationsKey)
	assert.JSONEq(t, `{"orderUpdates":true,"promotions":false,"reminders":true}`, raw)

	got, err := LoadPreferences(kv)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPreferencesValidation(t *testing.T) {
	kv := NewMemoryKV()
	p := DefaultPreferences()
	p.Theme = "blue"
	assert.Error(t, SavePreferences(kv, p))

	p = DefaultPreferences()
	p.Language = "fr"
	assert.Error(t, SavePreferences(kv, p))

	// Unknown stored values fall back to defaults.
	require.NoError(t, kv.Set(ThemeKey, "neon"))
	require.NoError(t, kv.Set(NotificationsKey, "{broken"))
	got, err := LoadPreferences(kv)
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), got)
}
