// Package pantry owns the persisted staple set and the confirmation state
// machine that resolves a consolidated ingredient list against it.
package pantry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/grocer/pkg/models"
)

const staplesFile = "staples.json"

// Manager persists the flat staple set, deduplicated by case-insensitive
// name, independently of any session.
type Manager struct {
	path string
}

// NewManager creates a manager storing staples in dir.
func NewManager(dir string) *Manager {
	return &Manager{path: filepath.Join(dir, staplesFile)}
}

// List returns all staples. A missing file means an empty set.
func (m *Manager) List() ([]models.Staple, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read staples: %w", err)
	}

	var staples []models.Staple
	if err := json.Unmarshal(data, &staples); err != nil {
		return nil, fmt.Errorf("failed to decode staples file %s: %w", m.path, err)
	}
	return staples, nil
}

// Names returns the lowercased staple names for exact matching.
func (m *Manager) Names() (map[string]bool, error) {
	staples, err := m.List()
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(staples))
	for _, s := range staples {
		names[strings.ToLower(s.Name)] = true
	}
	return names, nil
}

// Add appends a staple unless one with the same name (case-insensitive)
// already exists. It reports whether the set changed.
func (m *Manager) Add(name, quantity string) (bool, error) {
	staples, err := m.List()
	if err != nil {
		return false, err
	}
	for _, s := range staples {
		if strings.EqualFold(s.Name, name) {
			return false, nil
		}
	}
	staples = append(staples, models.Staple{Name: name, Quantity: quantity})
	return true, m.save(staples)
}

// Remove deletes the staple with the given name (case-insensitive) and
// reports whether anything was removed.
func (m *Manager) Remove(name string) (bool, error) {
	staples, err := m.List()
	if err != nil {
		return false, err
	}
	kept := staples[:0]
	for _, s := range staples {
		if !strings.EqualFold(s.Name, name) {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(staples) {
		return false, nil
	}
	return true, m.save(kept)
}

func (m *Manager) save(staples []models.Staple) error {
	if staples == nil {
		staples = []models.Staple{}
	}
	data, err := json.MarshalIndent(staples, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode staples: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0750); err != nil {
		return fmt.Errorf("failed to create staples directory: %w", err)
	}
	tempPath := m.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write staples: %w", err)
	}
	if err := os.Rename(tempPath, m.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace staples file: %w", err)
	}
	return nil
}
