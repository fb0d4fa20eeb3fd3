package venv

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNoManifest is returned for an environment without a site manifest.
var ErrNoManifest = errors.New("no site manifest")

// Manifest is the content of sites/<name>.yaml.
type Manifest struct {
	// Python overrides the interpreter used to create the environment.
	Python string `yaml:"python"`
	// Requirements are pip requirement specifiers installed at creation.
	Requirements []string `yaml:"requirements"`
	// Env is exported while the environment is active.
	Env map[string]string `yaml:"env"`

	digest string
}

// Digest identifies the manifest content. A changed digest means the
// environment must be rebuilt.
func (m Manifest) Digest() string {
	return m.digest
}

// ManifestPath returns where the manifest for name lives under topsrcdir.
func ManifestPath(topsrcdir, name string) string {
	return filepath.Join(topsrcdir, "sites", name+".yaml")
}

// LoadManifest reads and parses the manifest for name.
func LoadManifest(topsrcdir, name string) (Manifest, error) {
	var m Manifest
	path := ManifestPath(topsrcdir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, fmt.Errorf("%w for environment %q (expected %s)", ErrNoManifest, name, path)
		}
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	if m.Env == nil {
		m.Env = map[string]string{}
	}

	sum := sha256.Sum256(data)
	m.digest = hex.EncodeToString(sum[:])
	return m, nil
}
