package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold the file at path.
// Paths in the working directory need nothing and are left alone.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if dir == "." {
		return dir, nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
