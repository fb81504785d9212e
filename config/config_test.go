package config

import (
	"os"
	"path"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"

	"github.com/optimistiq/go-rolluptree/hasher"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.Equal(t, uint8(31), cfg.TreeDepth)
	require.Equal(t, "keccak", cfg.Hasher)
	require.Equal(t, uint8(5), cfg.SubTreeDepth)
	require.NotEmpty(t, cfg.DBPath)
	require.Equal(t, "info", cfg.Log.Level)

	h, err := cfg.NewHasher()
	require.NoError(t, err)
	require.Equal(t, uint8(31), hasher.Depth(h))
}

func TestLoadOverridesDefaults(t *testing.T) {
	overrides := map[string]interface{}{
		"TreeDepth": 16,
		"Hasher":    "poseidon",
		"Log": map[string]interface{}{
			"Level": "warn",
		},
	}
	data, err := toml.Marshal(overrides)
	require.NoError(t, err)

	cfgPath := path.Join(t.TempDir(), "rolluptree.toml")
	require.NoError(t, os.WriteFile(cfgPath, data, 0o600))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, uint8(16), cfg.TreeDepth)
	require.Equal(t, "poseidon", cfg.Hasher)
	require.Equal(t, "warn", cfg.Log.Level)
	// untouched keys keep their defaults
	require.Equal(t, uint8(5), cfg.SubTreeDepth)

	h, err := cfg.NewHasher()
	require.NoError(t, err)
	require.Equal(t, uint8(16), hasher.Depth(h))
}

func TestNewHasherUnknown(t *testing.T) {
	cfg := &Config{TreeDepth: 8, Hasher: "sha0"}
	_, err := cfg.NewHasher()
	require.Error(t, err)
}
