package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed golden_prompt.md
var DefaultGoldenPrompt string

// LoadGoldenPrompt reads the reviewer guide at path. An empty path, a
// missing file or a blank file yields DefaultGoldenPrompt.
func LoadGoldenPrompt(path string) (string, error) {
	if path == "" {
		return DefaultGoldenPrompt, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultGoldenPrompt, nil
	}
	if err != nil {
		return "", fmt.Errorf("read golden prompt: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return DefaultGoldenPrompt, nil
	}
	return string(data), nil
}
