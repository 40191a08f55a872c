// Package output persists the generated SQL script.
package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// scriptPerm is the mode of a freshly written script.
const scriptPerm = 0o644

// WriteScript writes script to path, creating or truncating it. Nothing is
// appended after the last statement.
//
// With atomic set, the script goes to a temp file in the same directory and
// is renamed over path only after a successful flush, so an interrupted run
// never leaves a half-written script behind.
func WriteScript(path, script string, atomic bool) error {
	if !atomic {
		if err := os.WriteFile(path, []byte(script), scriptPerm); err != nil {
			return fmt.Errorf("write script %s: %w", path, err)
		}
		return nil
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, scriptPerm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("move script into place: %w", err)
	}
	return nil
}
