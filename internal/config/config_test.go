package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAPIKey(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want error
	}{
		{name: "empty", key: "", want: ErrMissingCredential},
		{name: "blank", key: "   ", want: ErrMissingCredential},
		{name: "placeholder", key: PlaceholderAPIKey, want: ErrPlaceholderCredential},
		{name: "real", key: "sk-or-v1-abcdef0123456789", want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAPIKey(tc.key)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAPIKeyLooksSuspicious(t *testing.T) {
	assert.True(t, APIKeyLooksSuspicious("abc"))
	assert.False(t, APIKeyLooksSuspicious("sk-short"))
	assert.False(t, APIKeyLooksSuspicious("0123456789abcdefghijklmnop"))
}

func TestLoad_EnvFileAndProcessEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "# comment\n" +
		"OPENROUTER_API_KEY=\"sk-from-file-0123456789\"\n" +
		"export CHAT_MODEL=file/model\n" +
		"CHAT_STORE=redis\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	unsetenv(t, "OPENROUTER_API_KEY", "CHAT_STORE", "CHAT_TEMPERATURE", "CHAT_SYSTEM_PROMPT")
	t.Setenv("CHAT_MODEL", "env/model")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file-0123456789", cfg.APIKey)
	assert.Equal(t, "env/model", cfg.Model, "process environment wins over the env file")
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
	assert.NoError(t, cfg.Validate())
}

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingCredential)
}

func TestReadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# OpenRouter\n" +
		"OPENROUTER_API_KEY='sk-single-quoted'\n" +
		"export CHAT_MODEL=\"file/model\"\n" +
		"\n" +
		"CHAT_STORE=file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	vars, err := ReadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"OPENROUTER_API_KEY": "sk-single-quoted",
		"CHAT_MODEL":         "file/model",
		"CHAT_STORE":         "file",
	}, vars)

	_, err = ReadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadEnvFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BAD-KEY=1\n"), 0o600))
	_, err := ReadEnvFile(path)
	assert.Error(t, err)
}

func TestValidate_Store(t *testing.T) {
	cfg := &Config{APIKey: "sk-valid-key-0123456789", Store: StorePostgres}
	assert.Error(t, cfg.Validate())
	cfg.DatabaseURL = "postgres://localhost/chat"
	assert.NoError(t, cfg.Validate())
	cfg.Store = "sqlite"
	assert.Error(t, cfg.Validate())
}

func TestEnsureEnvFiles(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	created, err := EnsureEnvFiles(envFile)
	require.NoError(t, err)
	assert.True(t, created)

	vars, err := ReadEnvFile(envFile)
	require.NoError(t, err)
	assert.Equal(t, PlaceholderAPIKey, vars["OPENROUTER_API_KEY"])
	assert.FileExists(t, envFile+".example")

	created, err = EnsureEnvFiles(envFile)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSetupGuidance(t *testing.T) {
	assert.Contains(t, SetupGuidance(ErrPlaceholderCredential, ".env"), "placeholder")
	assert.Contains(t, SetupGuidance(ErrMissingCredential, ".env"), "cp .env.example .env")
}
