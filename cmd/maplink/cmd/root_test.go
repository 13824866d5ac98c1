package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/maplink/pkg/codec"
	"github.com/ssargent/maplink/pkg/config"
	"github.com/ssargent/maplink/pkg/convert"
	"github.com/ssargent/maplink/pkg/di"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	SetContainer(di.NewContainer())
	t.Cleanup(func() { SetContainer(nil) })

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTable(t *testing.T, dir string) string {
	t.Helper()
	f := codec.NewFile(codec.AreaLinkSchema)
	require.NoError(t, f.Append(
		codec.String("lnk_north"), codec.Int(1201), codec.Int(1), codec.Int(0),
		codec.Int(2), codec.Int(-64), codec.Int(32), codec.Int(128), codec.Int(16),
		codec.Float(-120.5), codec.Float(48.25), codec.String("door_a"),
	))
	data, err := codec.Encode(f)
	require.NoError(t, err)

	path := filepath.Join(dir, "data_fld_maplink.bin")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRootCommand_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	binPath := writeTable(t, dir)
	original, err := os.ReadFile(binPath)
	require.NoError(t, err)

	stdout, _, err := execute(t, binPath)
	require.NoError(t, err)
	yamlPath := filepath.Join(dir, "data_fld_maplink.yaml")
	assert.Equal(t, yamlPath+"\n", stdout)

	text, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(text), "id: lnk_north")
	assert.Contains(t, string(text), "spawn_x: -120.5")

	require.NoError(t, os.Remove(binPath))
	stdout, _, err = execute(t, yamlPath)
	require.NoError(t, err)
	assert.Equal(t, binPath+"\n", stdout)

	rebuilt, err := os.ReadFile(binPath)
	require.NoError(t, err)
	assert.Equal(t, original, rebuilt)
}

func TestRootCommand_Args(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, _, err := execute(t)
	assert.Error(t, err)

	_, _, err = execute(t, "a.bin", "b.bin")
	assert.Error(t, err)
}

func TestRootCommand_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "table.elf")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		_, _, err := execute(t, path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, convert.ErrUnsupportedExtension))
	})

	t.Run("bad text names record and field", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		doc := "format: maplink\nversion: 1\nrecords:\n" +
			"  - {destination_id: 1, spawn_x: 0, spawn_y: 0, spawn_point: a}\n" +
			"  - {destination_id: -1, spawn_x: 0, spawn_y: 0, spawn_point: b}\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

		_, _, err := execute(t, path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, codec.ErrUnencodableValue))
		assert.Contains(t, err.Error(), "record 1")
		assert.Contains(t, err.Error(), "destination_id")
		assert.NoFileExists(t, filepath.Join(dir, "broken.bin"))
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, _, err := execute(t, "--log-level", "loud", filepath.Join(dir, "x.bin"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid logging level")
	})
}

func TestRootCommand_Flags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	binPath := writeTable(t, dir)

	promPath := filepath.Join(dir, "maplink.prom")
	_, stderr, err := execute(t, "--log-level", "debug", "--metrics-file", promPath, "--verify=false", binPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "starting conversion")

	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `maplink_conversions_total{direction="decode",status="success"} 1`)
}

func TestRootCommand_ConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	binPath := writeTable(t, dir)

	cfg := config.DefaultConfig()
	cfg.TextExtension = ".txt"
	cfg.Logging.Level = "error"
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))

	stdout, stderr, err := execute(t, "--config", configPath, binPath)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(binPath, ".bin")+".txt\n", stdout)
	assert.Empty(t, stderr)
	assert.FileExists(t, filepath.Join(dir, "data_fld_maplink.txt"))

	_, _, err = execute(t, "--config", filepath.Join(dir, "missing.yaml"), binPath)
	assert.Error(t, err)
}
