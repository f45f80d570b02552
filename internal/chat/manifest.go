package chat

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest mirrors the contribution manifest of the host extension: command
// titles and keybindings used to enrich registry captions and key hints.
type Manifest struct {
	Contributes struct {
		Commands    []ManifestCommand    `yaml:"commands"`
		Keybindings []ManifestKeybinding `yaml:"keybindings"`
	} `yaml:"contributes"`
}

// ManifestCommand is one contributed editor command.
type ManifestCommand struct {
	Command    string `yaml:"command"`
	Title      string `yaml:"title"`
	ShortTitle string `yaml:"shortTitle"`
}

// ManifestKeybinding binds a key to a contributed command.
type ManifestKeybinding struct {
	Command string `yaml:"command"`
	Key     string `yaml:"key"`
}

// ParseManifest decodes a YAML contribution manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Enrich fills captions and key hints from the manifest. Identity fields
// (name, aliases, pattern, action id) are never touched; manifest entries
// that match no command are ignored. Running it again is a no-op.
func (r *Registry) Enrich(m *Manifest) {
	if m == nil {
		return
	}
	for _, mc := range m.Contributes.Commands {
		c := r.Resolve(mc.Command)
		if c == nil {
			continue
		}
		if c.Caption == "" {
			if mc.ShortTitle != "" {
				c.Caption = mc.ShortTitle
			} else {
				c.Caption = mc.Title
			}
		}
		for _, kb := range m.Contributes.Keybindings {
			if kb.Command == c.ActionID {
				c.Key = kb.Key
			}
		}
	}
}
