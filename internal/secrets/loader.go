package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a credential may come from.
type Source struct {
	// Name is used in error messages, e.g. "gemini api key".
	Name string
	// File points to a file holding the secret. It wins over every other source.
	File string
	// Value is an inline secret from the configuration file or an environment binding.
	Value string
	// Env is consulted last, when neither File nor Value is set.
	Env string
}

// Load resolves the secret from src in the order File, Value, Env and returns it trimmed.
// It fails when no source yields a non-blank value.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
		return "", fmt.Errorf("%s is not configured (set %s)", name, env)
	}

	return "", fmt.Errorf("%s is not configured", name)
}
