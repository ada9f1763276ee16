package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const envTemplate = "# OpenRouter API key\n" +
	"# Get your key from: https://openrouter.ai/keys\n" +
	"OPENROUTER_API_KEY=" + PlaceholderAPIKey + "\n"

// ReadEnvFile reads KEY=VALUE pairs from path without touching the process
// environment. A missing file is reported as os.ErrNotExist.
func ReadEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return vars, nil
}

// EnsureEnvFiles writes <envFile>.example and, if missing, a placeholder
// envFile next to it. It reports whether envFile was created.
func EnsureEnvFiles(envFile string) (created bool, err error) {
	example := envFile + ".example"
	if err := writeIfMissing(example); err != nil {
		return false, fmt.Errorf("create %s: %w", example, err)
	}
	if _, err := os.Stat(envFile); err == nil {
		return false, nil
	}
	if err := writeIfMissing(envFile); err != nil {
		return false, fmt.Errorf("create %s: %w", envFile, err)
	}
	slog.Info("created env file", "path", envFile)
	return true, nil
}

func writeIfMissing(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(envTemplate)
	return err
}

// SetupGuidance explains how to fix a credential error.
func SetupGuidance(err error, envFile string) string {
	var b strings.Builder
	switch {
	case errors.Is(err, ErrPlaceholderCredential):
		b.WriteString("Your " + envFile + " file still contains the placeholder API key.\n")
		b.WriteString("Replace it with your actual OpenRouter API key:\n\n")
		b.WriteString("  OPENROUTER_API_KEY=your_actual_api_key\n")
	default:
		b.WriteString("To use this application you need an OpenRouter API key.\n\n")
		b.WriteString("1. Visit https://openrouter.ai/keys\n")
		b.WriteString("2. Create a new API key\n")
		b.WriteString("3. Put it in " + envFile + ":\n\n")
		b.WriteString("  OPENROUTER_API_KEY=your_api_key\n\n")
		b.WriteString("You can start from the template: cp " + envFile + ".example " + envFile + "\n")
	}
	return b.String()
}
