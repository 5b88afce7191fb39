package config

import (
	"encoding/json"
	"os"
)

// saveSection rewrites one top-level key of the config file, keeping
// whatever else the file holds.
func saveSection(path, key string, value any) error {
	payload := map[string]any{}
	if existing, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(existing, &payload)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var section any
	if err := json.Unmarshal(raw, &section); err != nil {
		return err
	}
	payload[key] = section
	payload["version"] = CurrentVersion

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// SavePreferences persists reading preferences to the config file.
func (c *Config) SavePreferences() error {
	if c == nil || c.Paths == nil {
		return nil
	}
	return saveSection(c.Paths.ConfigPath, "preferences", c.Preferences)
}

// SaveGeometry persists the overlay size to the config file.
func (c *Config) SaveGeometry() error {
	if c == nil || c.Paths == nil {
		return nil
	}
	return saveSection(c.Paths.ConfigPath, "geometry", c.Geometry)
}
