package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"varietyd/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYaml = `
webServer:
  host: 127.0.0.1
  port: 9000
logger:
  level: debug
  mode: 0644
  dir: /tmp
upstream:
  channelId: "3505649"
snapshot:
  ttl: 5m
  mainGame: "Just Chatting"
cache:
  enabled: true
  size: 4
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigProvider_LoadsFileAndDefaults(t *testing.T) {
	path := writeConfig(t, testConfigYaml)

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, AppName, conf.AppName)
	assert.Equal(t, path, conf.Path)
	assert.True(t, conf.Debug)
	assert.Equal(t, 9000, conf.WebServer.Port)
	assert.Equal(t, "3505649", conf.Upstream.ChannelId)
	assert.Equal(t, 5*time.Minute, conf.Snapshot.TTL)
	assert.Equal(t, "Just Chatting", conf.Snapshot.MainGame)
	assert.True(t, conf.Cache.Enabled)

	// defaults
	assert.Equal(t, "https://sullygnome.com", conf.Upstream.BaseUrl)
	assert.Equal(t, 2021, conf.Snapshot.MinYear)
	assert.Equal(t, 64, conf.Snapshot.QueueSize)
	assert.InDelta(t, 0.30, conf.Snapshot.VarietyThreshold, 1e-9)
	assert.Equal(t, 30*time.Second, conf.Snapshot.RequestTimeout)
}

func TestNewConfigProvider_EnvOverride(t *testing.T) {
	path := writeConfig(t, testConfigYaml)
	t.Setenv("VARIETYD_MAIN_GAME", "Minecraft")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "Minecraft", conf.Snapshot.MainGame)
}

func TestNewConfigProvider_DotEnvFile(t *testing.T) {
	path := writeConfig(t, testConfigYaml)
	envPath := filepath.Join(filepath.Dir(path), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("VARIETYD_CHANNEL_ID=42\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("VARIETYD_CHANNEL_ID") })

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "42", conf.Upstream.ChannelId)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
webServer:
  host: 127.0.0.1
  port: 9000
logger:
  dir: /tmp
`)

	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	assert.Error(t, err, "channelId is required")
}
