package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sgErrors "github.com/javanhut/simplegit/internal/errors"
)

func TestLoadStateMissingIsNotInitialized(t *testing.T) {
	_, err := LoadState(filepath.Join(t.TempDir(), ControlDir))
	require.Error(t, err)
	assert.ErrorIs(t, err, sgErrors.ErrNotInitialized)
}

func TestSaveAndLoadState(t *testing.T) {
	dir := t.TempDir()
	st := NewState(filepath.Join(dir, LogsDir))
	st.Branches[DefaultBranch] = []string{"20240101120000"}
	st.Tags["v1"] = "20240101120000"
	st.BackupLocations = append(st.BackupLocations, "/mnt/backup")

	require.NoError(t, SaveState(dir, st))

	loaded, err := LoadState(dir)
	require.NoError(t, err)
	assert.Equal(t, st, loaded)

	// No temp files are left behind by the atomic write.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ConfigFile, entries[0].Name())
}

func TestLoadStateNormalizesSparseConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(StatePath(dir), []byte(`{"logs_directory": ""}`), 0644))

	st, err := LoadState(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, LogsDir), st.LogsDirectory)
	assert.Equal(t, DefaultBranch, st.CurrentBranch)
	assert.Contains(t, st.Branches, DefaultBranch)
	assert.NotNil(t, st.Tags)
	assert.NotNil(t, st.BackupLocations)
}

func TestLoadStateRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(StatePath(dir), []byte("{not json"), 0644))

	_, err := LoadState(dir)
	require.Error(t, err)
	assert.NotErrorIs(t, err, sgErrors.ErrNotInitialized)
}

func TestUpdateDoesNotWriteOnFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveState(dir, NewState(filepath.Join(dir, LogsDir))))

	_, err := Update(dir, func(s *State) error {
		s.CurrentBranch = "changed"
		return sgErrors.ErrInvalidOperation
	})
	require.ErrorIs(t, err, sgErrors.ErrInvalidOperation)

	st, err := LoadState(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultBranch, st.CurrentBranch)

	st, err = Update(dir, func(s *State) error {
		s.Branches["feat"] = []string{}
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, st.Branches, "feat")
}

func TestCloneIsDeep(t *testing.T) {
	st := NewState("/logs")
	st.Branches[DefaultBranch] = []string{"1"}
	c := st.Clone()
	c.Branches[DefaultBranch][0] = "2"
	c.Tags["x"] = "1"

	assert.Equal(t, "1", st.Branches[DefaultBranch][0])
	assert.NotContains(t, st.Tags, "x")
}

func TestSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.BackupInterval)
	assert.Equal(t, "Automatic backup", s.BackupTitle)
	assert.True(t, s.BackupPush)
	assert.True(t, s.ColorUI)
	assert.Equal(t, 3, s.DiffContext)
}

func TestSetSettingPersistsAndValidates(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, SetSetting(dir, "backup.interval", "15m"))
	require.NoError(t, SetSetting(dir, "diff.context", "5"))
	require.NoError(t, SetSetting(dir, "color.ui", "false"))

	s, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, s.BackupInterval)
	assert.Equal(t, 5, s.DiffContext)
	assert.False(t, s.ColorUI)

	v, err := GetSetting(dir, "backup.interval")
	require.NoError(t, err)
	assert.Equal(t, "15m", v)

	assert.Error(t, SetSetting(dir, "backup.interval", "soon"))
	assert.Error(t, SetSetting(dir, "diff.context", "-1"))
	assert.Error(t, SetSetting(dir, "color.ui", "maybe"))
	assert.Error(t, SetSetting(dir, "no.such", "x"))
	_, err = GetSetting(dir, "no.such")
	assert.Error(t, err)
}

func TestSettingsEnvironmentOverride(t *testing.T) {
	t.Setenv("SIMPLEGIT_BACKUP_INTERVAL", "30s")

	s, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, s.BackupInterval)
}
