// Package workspace persists per-story workspaces in a small embedded
// sqlite database (story.db): a single row holding the settings, tree and
// library JSON blobs.
package workspace

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/takecopter/backend/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS workspace (
	id INTEGER PRIMARY KEY,
	settings_json TEXT NOT NULL,
	tree_json TEXT NOT NULL,
	library_json TEXT NOT NULL DEFAULT '{"tags":[],"categories":[]}'
);
`

// open opens (creating if needed) the story database at dbPath, along with
// the story folder and its asset subfolders.
func open(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create story dir: %w", err)
	}
	for _, sub := range []string{"images", "videos"} {
		if err := os.MkdirAll(filepath.Join(dir, "assets", sub), 0755); err != nil {
			return nil, fmt.Errorf("create assets dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open story database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize story database: %w", err)
	}

	// Databases created before the library column existed get it added here.
	// The error is deliberately ignored: on current databases the column is
	// already present.
	_, _ = db.Exec(`ALTER TABLE workspace ADD COLUMN library_json TEXT NOT NULL DEFAULT '{"tags":[],"categories":[]}'`)

	return db, nil
}

// Read loads the workspace stored at dbPath. A missing database or missing
// row yields an empty default workspace rather than an error: workspaces
// are created lazily on first write.
func Read(dbPath string) (models.Workspace, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return models.EmptyWorkspace(), nil
	}

	db, err := open(dbPath)
	if err != nil {
		return models.Workspace{}, err
	}
	defer db.Close()

	var settingsJSON, treeJSON string
	var libraryJSON sql.NullString
	err = db.QueryRow(
		"SELECT settings_json, tree_json, library_json FROM workspace WHERE id = 1",
	).Scan(&settingsJSON, &treeJSON, &libraryJSON)
	if err == sql.ErrNoRows {
		return models.EmptyWorkspace(), nil
	}
	if err != nil {
		return models.Workspace{}, fmt.Errorf("read workspace row: %w", err)
	}

	ws := models.Workspace{}
	if err := json.Unmarshal([]byte(settingsJSON), &ws.Settings); err != nil {
		return models.Workspace{}, fmt.Errorf("parse workspace settings: %w", err)
	}
	if err := json.Unmarshal([]byte(treeJSON), &ws.Tree); err != nil {
		return models.Workspace{}, fmt.Errorf("parse workspace tree: %w", err)
	}
	// Library blobs written by old versions may be partial or malformed;
	// fall back to the default library instead of failing the whole read.
	ws.Library = models.DefaultLibrary()
	if libraryJSON.Valid && libraryJSON.String != "" {
		var lib models.SettingLibrary
		if err := json.Unmarshal([]byte(libraryJSON.String), &lib); err == nil {
			lib.Normalize()
			ws.Library = lib
		}
	}

	ws.Normalize()
	return ws, nil
}

// Write upserts the single workspace row at dbPath, creating the database
// and surrounding folders as needed. The three columns are written in one
// transaction so a partial update is never visible.
func Write(dbPath string, ws models.Workspace) error {
	ws.Normalize()

	settingsJSON, err := json.Marshal(ws.Settings)
	if err != nil {
		return fmt.Errorf("encode workspace settings: %w", err)
	}
	treeJSON, err := json.Marshal(ws.Tree)
	if err != nil {
		return fmt.Errorf("encode workspace tree: %w", err)
	}
	libraryJSON, err := json.Marshal(ws.Library)
	if err != nil {
		return fmt.Errorf("encode workspace library: %w", err)
	}

	db, err := open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin workspace write: %w", err)
	}
	_, err = tx.Exec(`
	INSERT INTO workspace (id, settings_json, tree_json, library_json)
	VALUES (1, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		settings_json = excluded.settings_json,
		tree_json = excluded.tree_json,
		library_json = excluded.library_json
	`, string(settingsJSON), string(treeJSON), string(libraryJSON))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("write workspace row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit workspace write: %w", err)
	}
	return nil
}
