package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests use t.Setenv and chdir, so none of them run in parallel.

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://www.srfax.com/SRF_SecWebSvc.php", cfg.Client.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Equal(t, ":8085", cfg.Twin.Addr)
	assert.EqualValues(t, 1, cfg.Twin.StartID)
	assert.Equal(t, 5*time.Second, cfg.Twin.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Account.AccessID)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
account:
  access_id: "100"
  access_password: pw
  caller_id: "5551234567"
client:
  timeout: 10s
twin:
  addr: 127.0.0.1:9999
  start_id: 42
  latency: 250ms
log:
  level: debug
  development: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "100", cfg.Account.AccessID)
	assert.Equal(t, "pw", cfg.Account.AccessPassword)
	assert.Equal(t, "5551234567", cfg.Account.CallerID)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "127.0.0.1:9999", cfg.Twin.Addr)
	assert.EqualValues(t, 42, cfg.Twin.StartID)
	assert.Equal(t, 250*time.Millisecond, cfg.Twin.Latency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_DiscoversSrfaxYml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "srfax.yml"), []byte("account:\n  access_id: \"777\"\n"), 0o600))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "777", cfg.Account.AccessID)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "srfax.yml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  access_id: \"100\"\nclient:\n  timeout: 10s\n"), 0o600))

	t.Setenv("SRFAX_ACCESS_ID", "200")
	t.Setenv("SRFAX_ACCESS_PASSWORD", "secret")
	t.Setenv("SRFAX_CLIENT_TIMEOUT", "3s")
	t.Setenv("SRFAX_TWIN_ADDR", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "200", cfg.Account.AccessID)
	assert.Equal(t, "secret", cfg.Account.AccessPassword)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
	assert.Equal(t, ":7000", cfg.Twin.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Client: Client{Timeout: time.Second}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SRFAX_ACCESS_ID")
	assert.Contains(t, err.Error(), "SRFAX_ACCESS_PASSWORD")

	cfg.Account = Account{AccessID: "100", AccessPassword: "pw"}
	assert.NoError(t, cfg.Validate())

	cfg.Client.Timeout = 0
	assert.ErrorContains(t, cfg.Validate(), "client.timeout")
}
