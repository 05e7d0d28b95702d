package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Example is the file written by `navgator config init`.
const Example = `# navgator configuration

# dark | light | system
theme = "dark"

[paths]
# Listed together with their immediate child directories
index_folders = ["~/Github"]
# Listed as they are, before the folders
static_items = ["~/Desktop"]

[preview]
max_lines = 200
tree_depth = 2
exclude = ["**/.git", "**/node_modules"]

[enrich]
# Bulk fetches per second while scanning every item, 0 = unlimited
bulk_rate = 0

[logs]
# Set dir (or NAVGATOR_DEBUG=1) to enable the debug log
# dir = "~/.local/state/navgator"
level = "info"
format = "json"
max_size_mb = 10
backups = 5
retention_days = 10
compress = true
ring_buffer_mb = 2
`

// WriteExample writes Example to path, creating parent directories. An
// existing file is never overwritten.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(Example), 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize config: %w", err)
	}
	return nil
}
