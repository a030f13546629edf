package cmd

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDirUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "symstash"), configDir())
}

func TestNewCatalogRequiresRemote(t *testing.T) {
	viper.Set("remote", "")
	t.Cleanup(viper.Reset)

	_, err := newCatalog()
	require.Error(t, err)
}

func TestNewCatalogFromConfig(t *testing.T) {
	viper.Set("remote", "localhost:5000/symbols/memdb")
	viper.Set("insecure", true)
	viper.Set("registry_username", "ci")
	viper.Set("registry_password", "secret")
	t.Cleanup(viper.Reset)

	catalog, err := newCatalog()
	require.NoError(t, err)
	assert.Equal(t, "localhost:5000/symbols/memdb", catalog.String())
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"sync", "status", "list", "fuzzy-match", "info", "publish", "run", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestBuildVersion(t *testing.T) {
	old := version
	version = "v1.2.3"
	t.Cleanup(func() { version = old })
	assert.Equal(t, "v1.2.3", buildVersion())
}
