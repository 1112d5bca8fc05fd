package prefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthModeDefaultsToDisabled(t *testing.T) {
	p, err := Open(filepath.Join(t.TempDir(), "app_settings.json"))
	require.NoError(t, err)
	require.False(t, p.IsAuthModeEnabled())
}

func TestAuthModeSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_settings.json")

	p, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, p.SetAuthModeEnabled(true))

	reopened, err := Open(path)
	require.NoError(t, err)
	require.True(t, reopened.IsAuthModeEnabled())
}

func TestAuthModeCannotBeCleared(t *testing.T) {
	p, err := Open(filepath.Join(t.TempDir(), "app_settings.json"))
	require.NoError(t, err)

	require.NoError(t, p.SetAuthModeEnabled(true))
	require.ErrorIs(t, p.SetAuthModeEnabled(false), ErrAuthModeLocked)
	require.True(t, p.IsAuthModeEnabled())
}

func TestDisabledFlagCanStayDisabled(t *testing.T) {
	p, err := Open(filepath.Join(t.TempDir(), "app_settings.json"))
	require.NoError(t, err)
	require.NoError(t, p.SetAuthModeEnabled(false))
	require.False(t, p.IsAuthModeEnabled())
}
