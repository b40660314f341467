package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
namespace: jobs
secret_key: 0123456789abcdef0123
extra_wiring:
  - lambda:
      FunctionName: jobs-report
      Artifact: report
`)

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.True(t, loaded.Found)
	assert.Equal(t, path, loaded.Path)
	assert.Equal(t, "jobs", loaded.Namespace)
	assert.Equal(t, "0123456789abcdef0123", loaded.SecretKey)
	require.Len(t, loaded.ExtraWiring, 1)
	assert.Equal(t, "jobs-report", loaded.ExtraWiring[0].Lambda.FunctionName)
	assert.Equal(t, int32(128), loaded.ExtraWiring[0].Lambda.MemorySize)
	assert.Equal(t, int32(30), loaded.ExtraWiring[0].Lambda.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "namespace: jobs\n")
	t.Setenv("CRONYO_NAMESPACE", "ops")
	t.Setenv("CRONYO_SECRET_KEY", "fedcba9876543210fedc")

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ops", loaded.Namespace)
	assert.Equal(t, "fedcba9876543210fedc", loaded.SecretKey)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yml")

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.False(t, loaded.Found)
	assert.Equal(t, path, loaded.Path)
	assert.Equal(t, DefaultNamespace, loaded.Namespace)
	assert.Error(t, loaded.RequireSecret())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"broken yaml", "namespace: [\n"},
		{"namespace with slash", "namespace: a/b\n"},
		{"short secret", "secret_key: abc\n"},
		{"wiring without name", "extra_wiring:\n  - lambda:\n      Timeout: 10\n"},
		{"wiring timeout too long", "extra_wiring:\n  - lambda:\n      FunctionName: x\n      Timeout: 901\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	cfg := Config{Namespace: "cronyo", SecretKey: "0123456789abcdef0123"}

	data, err := cfg.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Namespace, parsed.Namespace)
	assert.Equal(t, cfg.SecretKey, parsed.SecretKey)
	assert.NoError(t, parsed.RequireSecret())
}

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cronyo", "config.yml")

	require.NoError(t, Generate(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cronyo", loaded.Namespace)
	assert.Len(t, loaded.SecretKey, 80)
	assert.NotContains(t, loaded.SecretKey, "RANDOM_KEY")
}

func TestTemplate_FreshKeys(t *testing.T) {
	a, err := Template()
	require.NoError(t, err)
	b, err := Template()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
