package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateDir checks every .sql file in dir: filename shape, unique versions, unique
// names and the goose Up/Down markers.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	files, err := listMigrations(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}

	versions := map[string]string{}
	names := map[string]string{}
	for _, f := range files {
		if prev, ok := versions[f.version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", f.version, prev, f.file)
		}
		versions[f.version] = f.file
		if prev, ok := names[f.name]; ok {
			return fmt.Errorf("duplicate migration name %q in %q and %q", f.name, prev, f.file)
		}
		names[f.name] = f.file

		full := filepath.Join(dir, f.file)
		b, err := os.ReadFile(full)
		if err != nil {
			return fmt.Errorf("read file %q: %w", full, err)
		}
		txt := string(b)
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(txt, marker) {
				return fmt.Errorf("migration %q missing %q", f.file, marker)
			}
		}
	}
	return nil
}
