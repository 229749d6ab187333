package room

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadFile reads and validates a single room definition.
func LoadFile(path string) (*Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read room file: %w", err)
	}

	var r Room
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadDir loads every *.json room under dir, keyed by room name. A missing
// directory yields an empty set, not an error.
func LoadDir(dir string) (map[string]*Room, error) {
	rooms := make(map[string]*Room)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		r, err := LoadFile(path)
		if err != nil {
			return err
		}
		if _, dup := rooms[r.Name]; dup {
			return fmt.Errorf("duplicate room name %q in %s", r.Name, path)
		}
		rooms[r.Name] = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms from %s: %w", dir, err)
	}

	return rooms, nil
}
