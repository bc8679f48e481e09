package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// overrideKeys are the variables written to a fresh dotenv template.
var overrideKeys = []string{EnvRoots, EnvCachePath, EnvTagsPath}

// DotEnvPath returns ~/.skill-cortex/.env.
func DotEnvPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// LoadDotEnv parses ~/.skill-cortex/.env. Quoting, comments and "export"
// prefixes follow godotenv. A missing file yields an empty map.
func LoadDotEnv() (map[string]string, error) {
	p, err := DotEnvPath()
	if err != nil {
		return nil, err
	}
	vars, err := godotenv.Read(p)
	switch {
	case err == nil:
		return vars, nil
	case errors.Is(err, fs.ErrNotExist):
		return map[string]string{}, nil
	default:
		return nil, fmt.Errorf("cannot read dotenv file %s: %w", p, err)
	}
}

// GetConfigValue returns the process environment value of key, or the
// dotenv value when the variable is unset or empty.
func GetConfigValue(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	vars, err := LoadDotEnv()
	if err != nil {
		return "", err
	}
	return vars[key], nil
}

// EnsureDotEnvTemplate writes ~/.skill-cortex/.env with every override key
// left blank. An existing file is never touched. It reports whether a file
// was created.
func EnsureDotEnvTemplate() (bool, error) {
	p, err := DotEnvPath()
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("cannot stat dotenv file %s: %w", p, err)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return false, fmt.Errorf("cannot create %s: %w", filepath.Dir(p), err)
	}
	blank := make(map[string]string, len(overrideKeys))
	for _, k := range overrideKeys {
		blank[k] = ""
	}
	if err := godotenv.Write(blank, p); err != nil {
		return false, fmt.Errorf("cannot write dotenv template %s: %w", p, err)
	}
	if err := os.Chmod(p, 0o600); err != nil {
		return true, fmt.Errorf("cannot restrict %s: %w", p, err)
	}
	return true, nil
}
