package workspace

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/takecopter/backend/pkg/models"
)

// seedDatabase hand-creates a story database with arbitrary schema and rows,
// bypassing Write, to simulate files left behind by older versions.
func seedDatabase(t *testing.T, dbPath string, stmts ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open seed database: %v", err)
	}
	defer db.Close()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed statement %q: %v", stmt, err)
		}
	}
}

func TestReadMissingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stories", "ghost-12345678", "story.db")

	ws, err := Read(dbPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(ws.Settings) != 0 || len(ws.Tree) != 0 {
		t.Errorf("expected empty workspace, got %d settings, %d tree nodes", len(ws.Settings), len(ws.Tree))
	}
	if !reflect.DeepEqual(ws.Library, models.DefaultLibrary()) {
		t.Errorf("expected default library, got %+v", ws.Library)
	}

	// A read must not create the database.
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("Read created the database file")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stories", "hero-aabbccdd", "story.db")

	ws := models.EmptyWorkspace()
	ws.Settings = []json.RawMessage{
		json.RawMessage(`{"id":"s1","name":"Hero","category":"characters"}`),
		json.RawMessage(`{"id":"s2","name":"Castle","category":"worldbuilding"}`),
	}
	ws.Tree = []json.RawMessage{
		json.RawMessage(`{"id":"n1","title":"Chapter 1","children":[]}`),
	}
	ws.Library.Tags = []models.SettingTag{{Name: "draft", Color: "#808080"}}

	if err := Write(dbPath, ws); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Writing lazily creates the story folder and asset subfolders.
	storyDir := filepath.Dir(dbPath)
	for _, sub := range []string{"assets/images", "assets/videos"} {
		if _, err := os.Stat(filepath.Join(storyDir, sub)); err != nil {
			t.Errorf("expected %s to exist: %v", sub, err)
		}
	}

	got, err := Read(dbPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, ws) {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", got, ws)
	}
}

func TestWriteUpserts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stories", "upsert-00000000", "story.db")

	first := models.EmptyWorkspace()
	first.Settings = []json.RawMessage{json.RawMessage(`{"v":1}`)}
	if err := Write(dbPath, first); err != nil {
		t.Fatalf("first Write: %v", err)
	}

	second := models.EmptyWorkspace()
	second.Settings = []json.RawMessage{json.RawMessage(`{"v":2}`)}
	second.Tree = []json.RawMessage{json.RawMessage(`{"id":"root"}`)}
	if err := Write(dbPath, second); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	got, err := Read(dbPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Settings) != 1 || string(got.Settings[0]) != `{"v":2}` {
		t.Errorf("expected second settings to win, got %v", got.Settings)
	}
	if len(got.Tree) != 1 {
		t.Errorf("expected tree from second write, got %v", got.Tree)
	}
}

func TestReadMigratesPreLibrarySchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stories", "old-schema-00000000", "story.db")

	// Databases from before the library column have only three columns.
	seedDatabase(t, dbPath,
		`CREATE TABLE workspace (
			id INTEGER PRIMARY KEY,
			settings_json TEXT NOT NULL,
			tree_json TEXT NOT NULL
		)`,
		`INSERT INTO workspace (id, settings_json, tree_json)
		 VALUES (1, '[{"id":"s1","name":"Keep"}]', '[{"id":"n1"}]')`,
	)

	got, err := Read(dbPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Settings) != 1 || len(got.Tree) != 1 {
		t.Errorf("expected seeded data to survive, got %d settings, %d tree nodes", len(got.Settings), len(got.Tree))
	}
	// The added column's default is an empty library, not the default one.
	if len(got.Library.Categories) != 0 {
		t.Errorf("expected empty categories from column default, got %+v", got.Library.Categories)
	}
	if got.Library.Tags == nil || got.Library.Templates == nil {
		t.Error("expected normalized non-nil library slices")
	}

	// A subsequent Write must succeed against the migrated table.
	ws := got
	ws.Library = models.DefaultLibrary()
	if err := Write(dbPath, ws); err != nil {
		t.Fatalf("Write after migration: %v", err)
	}
}

func TestReadMalformedLibraryFallsBack(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stories", "bad-library-00000000", "story.db")

	seedDatabase(t, dbPath,
		`CREATE TABLE workspace (
			id INTEGER PRIMARY KEY,
			settings_json TEXT NOT NULL,
			tree_json TEXT NOT NULL,
			library_json TEXT NOT NULL DEFAULT '{"tags":[],"categories":[]}'
		)`,
		`INSERT INTO workspace (id, settings_json, tree_json, library_json)
		 VALUES (1, '[]', '[]', '{not json')`,
	)

	got, err := Read(dbPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got.Library, models.DefaultLibrary()) {
		t.Errorf("expected default library for unparsable blob, got %+v", got.Library)
	}
}

func TestWriteNormalizesNilSlices(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stories", "nil-00000000", "story.db")

	if err := Write(dbPath, models.Workspace{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(dbPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Settings == nil || got.Tree == nil {
		t.Error("expected non-nil slices after normalization")
	}
	if got.Library.Categories == nil {
		t.Error("expected non-nil library categories")
	}
}
