package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SettingsFile is the optional tool-settings file inside ControlDir.
const SettingsFile = "settings.toml"

// EnvPrefix prefixes environment overrides, e.g. SIMPLEGIT_BACKUP_INTERVAL.
const EnvPrefix = "SIMPLEGIT"

// Settings are tool preferences layered over the repository state:
// defaults, then settings.toml, then the environment.
type Settings struct {
	BackupInterval time.Duration
	BackupTitle    string
	BackupPush     bool
	ColorUI        bool
	DiffContext    int
}

var defaults = map[string]any{
	"backup.interval": "1h",
	"backup.title":    "Automatic backup",
	"backup.push":     true,
	"color.ui":        true,
	"diff.context":    3,
}

// SettingKeys lists every recognized key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newViper(controlDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(filepath.Join(controlDir, SettingsFile))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

func readViper(controlDir string) (*viper.Viper, error) {
	v := newViper(controlDir)
	if err := readInto(v); err != nil {
		return nil, err
	}
	return v, nil
}

func readInto(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read settings: %w", err)
		}
	}
	return nil
}

// LoadSettings reads settings for the repository at controlDir. A missing
// settings file yields the defaults.
func LoadSettings(controlDir string) (*Settings, error) {
	v, err := readViper(controlDir)
	if err != nil {
		return nil, err
	}

	interval := v.GetDuration("backup.interval")
	if interval <= 0 {
		return nil, fmt.Errorf("invalid backup.interval %q: must be a positive duration", v.GetString("backup.interval"))
	}
	ctx := v.GetInt("diff.context")
	if ctx < 0 {
		return nil, fmt.Errorf("invalid diff.context %d: must not be negative", ctx)
	}

	return &Settings{
		BackupInterval: interval,
		BackupTitle:    v.GetString("backup.title"),
		BackupPush:     v.GetBool("backup.push"),
		ColorUI:        v.GetBool("color.ui"),
		DiffContext:    ctx,
	}, nil
}

// GetSetting returns the effective value of key as a string.
func GetSetting(controlDir, key string) (string, error) {
	if _, ok := defaults[key]; !ok {
		return "", fmt.Errorf("unknown setting: %s (known: %s)", key, strings.Join(SettingKeys(), ", "))
	}
	v, err := readViper(controlDir)
	if err != nil {
		return "", err
	}
	return v.GetString(key), nil
}

// SetSetting validates value and persists it to settings.toml.
func SetSetting(controlDir, key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown setting: %s (known: %s)", key, strings.Join(SettingKeys(), ", "))
	}

	// Only the file's own keys are rewritten; defaults and environment
	// overrides stay out of settings.toml.
	path := filepath.Join(controlDir, SettingsFile)
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := readInto(v); err != nil {
		return err
	}

	switch key {
	case "backup.interval":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid duration for %s: %q", key, value)
		}
		v.Set(key, value)
	case "backup.push", "color.ui":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", key, value)
		}
		v.Set(key, b)
	case "diff.context":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid number for %s: %q", key, value)
		}
		v.Set(key, n)
	default:
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
