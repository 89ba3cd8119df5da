// Package manifest reads and writes project.json, the file enumerating a
// root's stories and shared library, and keeps the root directory layout in
// shape. Older manifests (flat story list, no folder names) are migrated on
// read.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/takecopter/backend/pkg/models"
	"github.com/takecopter/backend/pkg/paths"
)

// ErrInvalidSource is returned when a manifest's app marker is not ours.
var ErrInvalidSource = errors.New("directory was not created by takecopter")

// Entry pairs a story with its on-disk folder name. The folder name is a
// cached projection of title+id, never load-bearing for identity.
type Entry struct {
	Story      models.Story `json:"story"`
	FolderName string       `json:"folderName"`
}

// Manifest is the current project.json schema.
type Manifest struct {
	App           string                `json:"app"`
	SchemaVersion int64                 `json:"schemaVersion"`
	CreatedAt     string                `json:"createdAt"`
	SharedLibrary models.SettingLibrary `json:"sharedLibrary"`
	Stories       []Entry               `json:"stories"`
}

// legacyManifest is the pre-folder-name schema: stories inline, no shared
// library.
type legacyManifest struct {
	App           string         `json:"app"`
	SchemaVersion int64          `json:"schemaVersion"`
	CreatedAt     string         `json:"createdAt"`
	Stories       []models.Story `json:"stories"`
}

// migrateLegacy lifts a legacy manifest into the current schema,
// synthesizing folder names from each story's title and id.
func migrateLegacy(legacy legacyManifest) Manifest {
	m := Manifest{
		App:           legacy.App,
		SchemaVersion: legacy.SchemaVersion,
		CreatedAt:     legacy.CreatedAt,
		SharedLibrary: models.DefaultLibrary(),
		Stories:       make([]Entry, 0, len(legacy.Stories)),
	}
	for _, story := range legacy.Stories {
		m.Stories = append(m.Stories, Entry{
			Story:      story,
			FolderName: paths.StoryFolderName(story.Title, story.ID),
		})
	}
	return m
}

// missingFolderNames reports whether every story entry lacks a folder name:
// the fingerprint of the legacy flat-story schema, whose entries carry none
// of the current entry's fields.
func missingFolderNames(m Manifest) bool {
	if len(m.Stories) == 0 {
		return false
	}
	for _, entry := range m.Stories {
		if entry.FolderName != "" {
			return false
		}
	}
	return true
}

// Read parses the manifest at root. A file that does not match the current
// schema is decoded as the legacy shape and migrated in memory; the caller
// decides when to persist the migrated form. Unknown fields are tolerated
// in both shapes so manifests written by a slightly newer build still load.
func Read(root string) (Manifest, error) {
	raw, err := os.ReadFile(paths.ManifestPath(root))
	if err != nil {
		return Manifest{}, fmt.Errorf("read project manifest: %w", err)
	}

	var m Manifest
	currentErr := json.Unmarshal(raw, &m)
	if currentErr != nil || missingFolderNames(m) {
		var legacy legacyManifest
		if legacyErr := json.Unmarshal(raw, &legacy); legacyErr != nil {
			if currentErr == nil {
				currentErr = legacyErr
			}
			return Manifest{}, fmt.Errorf("parse project manifest: %w", currentErr)
		}
		m = migrateLegacy(legacy)
	}

	if m.App != models.App {
		return Manifest{}, ErrInvalidSource
	}

	m.SharedLibrary.Normalize()
	return m, nil
}

// Write rewrites the manifest wholesale. There are no partial updates;
// every mutation rewrites the full file.
func Write(root string, m Manifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project manifest: %w", err)
	}
	if err := os.WriteFile(paths.ManifestPath(root), raw, 0644); err != nil {
		return fmt.Errorf("write project manifest: %w", err)
	}
	return nil
}

// EnsureLayout idempotently creates the stories/exports directories,
// refreshes the advisory lock marker, and writes an empty manifest if none
// exists yet.
func EnsureLayout(root string) error {
	if err := os.MkdirAll(paths.StoriesDir(root), 0755); err != nil {
		return fmt.Errorf("create stories dir: %w", err)
	}
	if err := os.MkdirAll(paths.ExportsDir(root), 0755); err != nil {
		return fmt.Errorf("create exports dir: %w", err)
	}

	// Advisory marker only; never read back and not an exclusive lock.
	marker := fmt.Sprintf("pid=%d\nupdated_at=%s\n", os.Getpid(), Now())
	if err := os.WriteFile(paths.LockFile(root), []byte(marker), 0644); err != nil {
		return fmt.Errorf("write lock marker: %w", err)
	}

	if _, err := os.Stat(paths.ManifestPath(root)); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat project manifest: %w", err)
	}

	return Write(root, Manifest{
		App:           models.App,
		SchemaVersion: models.SchemaVersion,
		CreatedAt:     Now(),
		SharedLibrary: models.DefaultLibrary(),
		Stories:       []Entry{},
	})
}

// FindEntry returns the index of the entry for storyID, or -1.
func (m *Manifest) FindEntry(storyID string) int {
	for i := range m.Stories {
		if m.Stories[i].Story.ID == storyID {
			return i
		}
	}
	return -1
}

// Now returns the timestamp format used throughout manifests and exports:
// RFC3339, UTC, second precision.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
