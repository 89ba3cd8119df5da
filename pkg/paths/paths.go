// Package paths knows where takecopter keeps things on disk: the app data
// dir, the persisted root selection, and the layout inside a project root.
package paths

import (
	"os"
	"path/filepath"
)

// Paths resolves locations relative to the app data directory. The zero
// value is not usable; construct with New.
type Paths struct {
	dataDir string
}

// New returns a resolver rooted at dataDir. When dataDir is empty the
// platform default under the user config dir is used.
func New(dataDir string) Paths {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	return Paths{dataDir: dataDir}
}

// DefaultDataDir returns the per-user data directory for takecopter.
func DefaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "takecopter")
}

// DataDir returns the app data directory.
func (p Paths) DataDir() string {
	return p.dataDir
}

// DefaultRoot is the project root used when the user does not pick one.
func (p Paths) DefaultRoot() string {
	return filepath.Join(p.dataDir, "projects", "default.takecopter")
}

// StateFile is the small file persisting the active root selection across
// restarts.
func (p Paths) StateFile() string {
	return filepath.Join(p.dataDir, "state.yml")
}

// ManifestPath returns the project.json location inside a root.
func ManifestPath(root string) string {
	return filepath.Join(root, "project.json")
}

// LockFile returns the advisory lock marker location inside a root.
func LockFile(root string) string {
	return filepath.Join(root, ".lock")
}

// StoriesDir returns the directory holding all story folders.
func StoriesDir(root string) string {
	return filepath.Join(root, "stories")
}

// ExportsDir returns the directory receiving export files and backups.
func ExportsDir(root string) string {
	return filepath.Join(root, "exports")
}

// StoryDir returns a story's folder given its manifest folder name.
func StoryDir(root, folderName string) string {
	return filepath.Join(StoriesDir(root), folderName)
}

// StoryDBPath returns the embedded database location for a story folder.
func StoryDBPath(root, folderName string) string {
	return filepath.Join(StoryDir(root, folderName), "story.db")
}
