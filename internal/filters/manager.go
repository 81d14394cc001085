// Package filters manages the catalog of unit filters the student has saved
// for later reuse.
package filters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"mastery-scheduler/internal/models"
)

// Manager holds the named filters loaded from disk. The catalog is read once
// at startup and immutable afterwards.
type Manager struct {
	filters map[string]models.NamedFilter
}

// NewManager loads every .yaml file in the given directory as a named
// filter. A missing directory yields an empty catalog.
func NewManager(dir string) (*Manager, error) {
	m := &Manager{filters: make(map[string]models.NamedFilter)}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read filter directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read filter %s: %w", path, err)
		}

		var filter models.NamedFilter
		if err := yaml.Unmarshal(data, &filter); err != nil {
			return nil, fmt.Errorf("failed to parse filter %s: %w", path, err)
		}
		if filter.ID == "" {
			return nil, fmt.Errorf("filter %s is missing an id", path)
		}
		if _, ok := m.filters[filter.ID]; ok {
			return nil, fmt.Errorf("duplicate filter id %s in %s", filter.ID, path)
		}
		m.filters[filter.ID] = filter
	}
	return m, nil
}

// Get returns the filter with the given id.
func (m *Manager) Get(id string) (models.NamedFilter, bool) {
	filter, ok := m.filters[id]
	return filter, ok
}

// List returns the id and description of every saved filter, sorted by id.
func (m *Manager) List() []models.NamedFilter {
	list := make([]models.NamedFilter, 0, len(m.filters))
	for _, filter := range m.filters {
		list = append(list, filter)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
