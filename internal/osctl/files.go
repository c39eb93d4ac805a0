package osctl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// CreateFile writes content to name inside the assistant's files directory
// and returns the full path.
func (h *Host) CreateFile(ctx context.Context, name, content string) (string, error) {
	if err := os.MkdirAll(h.filesDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}

	path := filepath.Join(h.filesDir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	h.log.Info("File created", "path", path)
	return path, nil
}

// RenameFile finds oldName in the usual user folders and renames it in
// place. It refuses to overwrite an existing file.
func (h *Host) RenameFile(ctx context.Context, oldName, newName string) (string, error) {
	oldPath, ok := h.findFile(filepath.Base(oldName))
	if !ok {
		return "", fmt.Errorf("%s: %w", oldName, ErrNotFound)
	}

	newPath := filepath.Join(filepath.Dir(oldPath), filepath.Base(newName))
	if _, err := os.Stat(newPath); err == nil {
		return "", fmt.Errorf("%s: %w", newName, ErrExists)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return "", fmt.Errorf("rename %s: %w", oldPath, err)
	}

	h.log.Info("File renamed", "from", oldPath, "to", newPath)
	return newPath, nil
}

func (h *Host) searchDirs() []string {
	return []string{
		h.home,
		filepath.Join(h.home, "Documents"),
		filepath.Join(h.home, "Downloads"),
		filepath.Join(h.home, "Desktop"),
		h.filesDir,
	}
}

func (h *Host) findFile(name string) (string, bool) {
	for _, dir := range h.searchDirs() {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}
