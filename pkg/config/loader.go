package config

import (
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Loader composes settings using the layered precedence model. Higher layers
// override lower ones while preserving unspecified fields.
// Order (low -> high): defaults < project < local < runtime overrides.
type Loader struct {
	ProjectRoot      string
	RuntimeOverrides *Settings
}

// Load resolves and merges settings across all layers.
func (l *Loader) Load() (*Settings, error) {
	if strings.TrimSpace(l.ProjectRoot) == "" {
		return nil, errors.New("project root is required for settings loading")
	}

	root := l.ProjectRoot
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	} else {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	merged := GetDefaultSettings()

	layers := []struct {
		name string
		path string
	}{
		{name: "project", path: projectSettingsPath(root)},
		{name: "local", path: localSettingsPath(root)},
	}

	for _, layer := range layers {
		if err := applyLayer(&merged, layer.name, layer.path); err != nil {
			return nil, err
		}
	}

	if l.RuntimeOverrides != nil {
		if next := MergeSettings(&merged, l.RuntimeOverrides); next != nil {
			merged = *next
		}
	}

	return &merged, nil
}

// projectSettingsPath returns the tracked project settings path.
func projectSettingsPath(root string) string {
	if strings.TrimSpace(root) == "" {
		return ""
	}
	return filepath.Join(root, ".toolstep", "settings.json")
}

// localSettingsPath returns the untracked project-local settings path.
func localSettingsPath(root string) string {
	if strings.TrimSpace(root) == "" {
		return ""
	}
	return filepath.Join(root, ".toolstep", "settings.local.json")
}

// loadJSONFile decodes a settings JSON file. Missing files return (nil, nil).
func loadJSONFile(path string) (*Settings, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &s, nil
}

func applyLayer(dst *Settings, name, path string) error {
	if path == "" {
		return nil
	}
	cfg, err := loadJSONFile(path)
	if err != nil {
		return fmt.Errorf("load %s settings: %w", name, err)
	}
	if cfg == nil {
		return nil
	}
	log.Printf("settings: applying %s layer from %s", name, path)
	if next := MergeSettings(dst, cfg); next != nil {
		*dst = *next
	}
	return nil
}
