// Package config reads and writes mach's key=value settings files and
// resolves effective values against the declared settings schema.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/usage"
)

// Settings holds values from the settings file, an optional overlay file
// loaded later (--settings-file) and the declared schema defaults.
// Lookups resolve overlay, then file, then default.
type Settings struct {
	mu      sync.RWMutex
	path    string
	values  map[string]string
	overlay map[string]string
	schema  map[string]domain.Setting
	order   []string
}

// Load reads the settings file at path. A missing file is not an error.
func Load(path string) (*Settings, error) {
	s := &Settings{
		path:    path,
		overlay: map[string]string{},
		schema:  map[string]domain.Setting{},
	}

	values, err := readFile(path)
	if err != nil {
		return nil, err
	}
	s.values = values
	s.Declare(domain.FrameworkSettings...)
	return s, nil
}

func readFile(path string) (map[string]string, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	values, err := Parse(lines)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return nil, usage.InvalidSettingValue(path, perr.Line, perr.Text)
		}
		return nil, err
	}
	return values, nil
}

// LoadOverlay reads an additional settings file whose values take precedence
// over the main file. Overlay values are never written back.
func (s *Settings) LoadOverlay(path string) error {
	values, err := readFile(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.overlay[k] = v
	}
	return nil
}

// Path returns the settings file being edited.
func (s *Settings) Path() string {
	return s.path
}

// Declare adds settings to the schema. A redeclared name keeps its original position.
func (s *Settings) Declare(settings ...domain.Setting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, setting := range settings {
		if _, exists := s.schema[setting.Name]; !exists {
			s.order = append(s.order, setting.Name)
		}
		s.schema[setting.Name] = setting
	}
}

// DeclareProviders adds the settings contributed by each provider.
func (s *Settings) DeclareProviders(providers ...domain.SettingsProvider) {
	for _, p := range providers {
		s.Declare(p.Settings()...)
	}
}

// Schema returns the declared settings in declaration order.
func (s *Settings) Schema() []domain.Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Setting, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.schema[name])
	}
	return out
}

// Declared returns the schema entry for key.
func (s *Settings) Declared(key string) (domain.Setting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	setting, ok := s.schema[key]
	return setting, ok
}

// Validate checks that every key present in the loaded files is declared
// or is an alias. Call it once all settings providers are declared.
func (s *Settings) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var unknown []string
	for _, values := range []map[string]string{s.values, s.overlay} {
		for key := range values {
			if !s.knownLocked(key) {
				unknown = append(unknown, key)
			}
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return usage.InvalidSettingKey(unknown[0])
}

func (s *Settings) knownLocked(key string) bool {
	if domain.IsAliasKey(key) {
		return true
	}
	_, ok := s.schema[key]
	return ok
}

// Get returns the effective value for key.
func (s *Settings) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.overlay[key]; ok {
		return v, true
	}
	if v, ok := s.values[key]; ok {
		return v, true
	}
	if setting, ok := s.schema[key]; ok {
		return setting.Default, true
	}
	return "", false
}

// String returns the effective value for key or "".
func (s *Settings) String(key string) string {
	v, _ := s.Get(key)
	return v
}

// Bool parses the effective value for key as a boolean; unparsable is false.
func (s *Settings) Bool(key string) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// GetAll returns every declared setting and every set key with its effective value.
func (s *Settings) GetAll() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.schema)+len(s.values))
	for name, setting := range s.schema {
		out[name] = setting.Default
	}
	for k, v := range s.values {
		out[k] = v
	}
	for k, v := range s.overlay {
		out[k] = v
	}
	return out, nil
}

// Aliases returns alias name to expansion.
func (s *Settings) Aliases() map[string]string {
	all, _ := s.GetAll()
	out := make(map[string]string)
	for k, v := range all {
		if domain.IsAliasKey(k) {
			out[strings.TrimPrefix(k, domain.AliasPrefix)] = v
		}
	}
	return out
}

// Set validates key and persists key=value to the settings file.
func (s *Settings) Set(key, value string) error {
	s.mu.RLock()
	known := s.knownLocked(key)
	s.mu.RUnlock()
	if !known {
		return usage.InvalidSettingKey(key)
	}

	err := WithLock(s.path, func() error {
		lines, err := ReadLines(s.path)
		if err != nil {
			return err
		}
		lines, _ = Set(lines, key, value)
		return WriteLines(s.path, lines)
	})
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Unset removes key from the settings file.
func (s *Settings) Unset(key string) error {
	err := WithLock(s.path, func() error {
		lines, err := ReadLines(s.path)
		if err != nil {
			return err
		}
		lines, removed := Unset(lines, key)
		if !removed {
			return nil
		}
		return WriteLines(s.path, lines)
	})
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Verify Settings implements domain.ConfigProvider
var _ domain.ConfigProvider = (*Settings)(nil)
