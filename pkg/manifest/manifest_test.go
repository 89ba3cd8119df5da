package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takecopter/backend/pkg/models"
	"github.com/takecopter/backend/pkg/paths"
)

func TestEnsureLayoutIdempotent(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, EnsureLayout(root))

	assert.DirExists(t, paths.StoriesDir(root))
	assert.DirExists(t, paths.ExportsDir(root))
	assert.FileExists(t, paths.LockFile(root))
	assert.FileExists(t, paths.ManifestPath(root))

	m, err := Read(root)
	require.NoError(t, err)
	assert.Equal(t, models.App, m.App)
	assert.Equal(t, int64(models.SchemaVersion), m.SchemaVersion)
	assert.Empty(t, m.Stories)
	assert.Equal(t, models.DefaultLibrary(), m.SharedLibrary)

	// Running again must not clobber an existing manifest.
	m.Stories = append(m.Stories, Entry{
		Story:      models.Story{ID: "abc", Title: "Kept", UpdatedAt: Now()},
		FolderName: "kept-abc",
	})
	require.NoError(t, Write(root, m))
	require.NoError(t, EnsureLayout(root))

	again, err := Read(root)
	require.NoError(t, err)
	require.Len(t, again.Stories, 1)
	assert.Equal(t, "Kept", again.Stories[0].Story.Title)
}

func TestReadWriteRoundTrip(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, EnsureLayout(root))

	m, err := Read(root)
	require.NoError(t, err)

	m.SharedLibrary.Tags = []models.SettingTag{{Name: "magic", Color: "#aa00ff"}}
	m.Stories = []Entry{{
		Story: models.Story{
			ID:          "11112222-3333-4444-5555-666677778888",
			Title:       "Roundtrip",
			Description: "a story",
			UpdatedAt:   "2026-01-02T03:04:05Z",
			CoverColor:  "var(--teal-400)",
		},
		FolderName: "roundtrip-11112222",
	}}
	require.NoError(t, Write(root, m))

	got, err := Read(root)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestReadLegacyManifestMigrates(t *testing.T) {
	root := t.TempDir()
	legacy := `{
  "app": "takecopter",
  "schemaVersion": 1,
  "createdAt": "2024-05-01T00:00:00Z",
  "stories": [
    {
      "id": "aabbccdd-0000-1111-2222-333344445555",
      "title": "Old Story",
      "description": "from before folder names",
      "updatedAt": "2024-05-02T00:00:00Z",
      "coverColor": "var(--coral-400)"
    }
  ]
}`
	require.NoError(t, os.WriteFile(paths.ManifestPath(root), []byte(legacy), 0644))

	m, err := Read(root)
	require.NoError(t, err)

	require.Len(t, m.Stories, 1)
	assert.Equal(t, "Old Story", m.Stories[0].Story.Title)
	assert.Equal(t, "old-story-aabbccdd", m.Stories[0].FolderName)
	assert.Equal(t, models.DefaultLibrary(), m.SharedLibrary)
	assert.Equal(t, "2024-05-01T00:00:00Z", m.CreatedAt)
}

func TestReadToleratesUnknownFields(t *testing.T) {
	root := t.TempDir()
	// A manifest written by a slightly newer build: extra fields at the top
	// level and on a story entry must not push the file down the legacy
	// path or fail the read.
	newer := `{
  "app": "takecopter",
  "schemaVersion": 1,
  "createdAt": "2026-03-01T00:00:00Z",
  "futureField": {"nested": true},
  "sharedLibrary": {"tags": [], "categories": [], "templates": []},
  "stories": [
    {
      "story": {
        "id": "12345678-aaaa-bbbb-cccc-000011112222",
        "title": "Forward Compatible",
        "description": "",
        "updatedAt": "2026-03-02T00:00:00Z",
        "coverColor": "var(--violet-400)"
      },
      "folderName": "forward-compatible-12345678",
      "futureEntryField": 7
    }
  ]
}`
	require.NoError(t, os.WriteFile(paths.ManifestPath(root), []byte(newer), 0644))

	m, err := Read(root)
	require.NoError(t, err)
	require.Len(t, m.Stories, 1)
	assert.Equal(t, "Forward Compatible", m.Stories[0].Story.Title)
	assert.Equal(t, "forward-compatible-12345678", m.Stories[0].FolderName)
}

func TestReadRejectsForeignApp(t *testing.T) {
	root := t.TempDir()
	foreign := `{"app":"otherapp","schemaVersion":1,"createdAt":"2024-01-01T00:00:00Z","sharedLibrary":{"tags":[],"categories":[],"templates":[]},"stories":[]}`
	require.NoError(t, os.WriteFile(paths.ManifestPath(root), []byte(foreign), 0644))

	_, err := Read(root)
	assert.True(t, errors.Is(err, ErrInvalidSource))
}

func TestReadMalformedManifest(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(paths.ManifestPath(root), []byte("{not json"), 0644))

	_, err := Read(root)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidSource))
}

func TestReadMissingManifest(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nowhere"))
	require.Error(t, err)
}
