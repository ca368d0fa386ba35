package configutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
}

func TestReadConfigMergesLocalOverrides(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "service.json5")

	err := os.WriteFile(base, []byte(`{host: "example.com", port: 8080}`), 0644)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "service.local.json5"),
		[]byte(`{port: 9090, password: "hunter2"}`),
		0644,
	)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Host:     "example.com",
		Port:     9090,
		Password: "hunter2",
	}, config)
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(
		filepath.Join(dir, "service.local.json5"),
		[]byte(`{host: "local"}`),
		0644,
	)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "service.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", config.Host)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nothing.json5"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	err := os.WriteFile(
		filepath.Join(dir, "service.json5"),
		[]byte(`{host: "up-top"}`),
		0644,
	)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	config, err := ReadRecursively[testConfig]("service.json5")
	require.NoError(t, err)
	require.Equal(t, "up-top", config.Host)
}
