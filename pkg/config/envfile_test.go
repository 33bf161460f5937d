package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/config"
)

type envFileTestConfig struct {
	Bucket string `env:"TEST_ENVFILE_BUCKET" envDefault:"default-bucket"`
	Region string `env:"TEST_ENVFILE_REGION" envDefault:"us-east-1"`
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadEnv_CustomPath(t *testing.T) {
	os.Unsetenv("TEST_ENVFILE_BUCKET")
	os.Unsetenv("TEST_ENVFILE_REGION")
	t.Cleanup(func() {
		os.Unsetenv("TEST_ENVFILE_BUCKET")
		os.Unsetenv("TEST_ENVFILE_REGION")
	})
	config.ResetCache()

	path := writeEnvFile(t, "TEST_ENVFILE_BUCKET=uploads\nTEST_ENVFILE_REGION=eu-west-1\n")
	require.NoError(t, config.LoadEnv(path))

	var cfg envFileTestConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "uploads", cfg.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Region)
}

func TestLoadEnv_NonExistentPath(t *testing.T) {
	err := config.LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}

func TestMustLoadEnv_PanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		config.MustLoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	})
}
