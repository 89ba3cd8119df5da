package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/takecopter/backend/pkg/fsutil"
	"github.com/takecopter/backend/pkg/manifest"
	"github.com/takecopter/backend/pkg/models"
	"github.com/takecopter/backend/pkg/paths"
	"github.com/takecopter/backend/pkg/workspace"
)

const exportTimestampLayout = "20060102-150405"

// ExportProject snapshots the whole project as a versioned payload.
func (s *Service) ExportProject() (models.ExportedProjectData, error) {
	root, err := s.requireActiveRoot()
	if err != nil {
		return models.ExportedProjectData{}, err
	}
	data, err := s.loadProjectData(root)
	if err != nil {
		return models.ExportedProjectData{}, err
	}
	return models.ExportedProjectData{
		App:           models.App,
		SchemaVersion: models.SchemaVersion,
		ExportedAt:    manifest.Now(),
		Data:          data,
	}, nil
}

// ExportStory snapshots a single story and its workspace.
func (s *Service) ExportStory(storyID string) (models.ExportedStoryData, error) {
	root, err := s.requireActiveRoot()
	if err != nil {
		return models.ExportedStoryData{}, err
	}
	m, err := manifest.Read(root)
	if err != nil {
		return models.ExportedStoryData{}, err
	}
	idx := m.FindEntry(storyID)
	if idx < 0 {
		return models.ExportedStoryData{}, ErrNotFound
	}

	ws, err := workspace.Read(paths.StoryDBPath(root, m.Stories[idx].FolderName))
	if err != nil {
		return models.ExportedStoryData{}, err
	}
	return models.ExportedStoryData{
		App:           models.App,
		SchemaVersion: models.SchemaVersion,
		ExportedAt:    manifest.Now(),
		Story:         m.Stories[idx].Story,
		Workspace:     ws,
	}, nil
}

// ExportProjectToLocal writes the project snapshot as a timestamped JSON
// file under exports/ and reveals the folder. Returns the exports folder.
func (s *Service) ExportProjectToLocal() (string, error) {
	payload, err := s.ExportProject()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("takecopter-project-%s.json", time.Now().Format(exportTimestampLayout))
	return s.writeExportFile(name, payload)
}

// ExportStoryToLocal writes a story snapshot as a timestamped JSON file
// under exports/ and reveals the folder. Returns the exports folder.
func (s *Service) ExportStoryToLocal(storyID string) (string, error) {
	payload, err := s.ExportStory(storyID)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("takecopter-story-%s-%s.json", payload.Story.ID, time.Now().Format(exportTimestampLayout))
	return s.writeExportFile(name, payload)
}

func (s *Service) writeExportFile(name string, payload any) (string, error) {
	root, err := s.requireActiveRoot()
	if err != nil {
		return "", err
	}
	exportDir := paths.ExportsDir(root)
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export payload: %w", err)
	}
	if err := os.WriteFile(filepath.Join(exportDir, name), raw, 0644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}

	if err := s.openPath(exportDir); err != nil {
		return "", err
	}
	return exportDir, nil
}

// BackupLocalDatabase copies the entire project root into a timestamped
// folder under exports/ and reveals it. Returns the backup folder.
func (s *Service) BackupLocalDatabase() (string, error) {
	root, err := s.requireActiveRoot()
	if err != nil {
		return "", err
	}
	exportDir := paths.ExportsDir(root)
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}

	backupDir := filepath.Join(exportDir, "backup-"+time.Now().Format(exportTimestampLayout))
	if err := fsutil.CopyDir(root, backupDir); err != nil {
		return "", fmt.Errorf("copy project root: %w", err)
	}
	if err := s.openPath(backupDir); err != nil {
		return "", err
	}
	s.log.WithField("backup", backupDir).Info("project backed up")
	return backupDir, nil
}

// ImportProject replaces the active project's manifest and workspaces with
// the payload. The source app marker must match and the payload may not be
// newer than this binary understands.
func (s *Service) ImportProject(payload models.ExportedProjectData) error {
	if payload.App != models.App {
		return fmt.Errorf("import project: %w", manifest.ErrInvalidSource)
	}
	if payload.SchemaVersion > models.SchemaVersion {
		return ErrVersionTooNew
	}

	root, err := s.requireActiveRoot()
	if err != nil {
		return err
	}
	if err := manifest.EnsureLayout(root); err != nil {
		return err
	}
	m, err := manifest.Read(root)
	if err != nil {
		return err
	}

	payload.Data.SharedLibrary.Normalize()
	m.SharedLibrary = payload.Data.SharedLibrary
	m.Stories = make([]manifest.Entry, 0, len(payload.Data.Stories))
	for _, story := range payload.Data.Stories {
		m.Stories = append(m.Stories, manifest.Entry{
			Story:      story,
			FolderName: paths.StoryFolderName(story.Title, story.ID),
		})
	}
	if err := manifest.Write(root, m); err != nil {
		return err
	}

	for _, entry := range m.Stories {
		ws, ok := payload.Data.Workspaces[entry.Story.ID]
		if !ok {
			ws = models.EmptyWorkspace()
		}
		if err := workspace.Write(paths.StoryDBPath(root, entry.FolderName), ws); err != nil {
			return err
		}
	}

	s.log.WithField("stories", len(m.Stories)).Info("project imported")
	return nil
}

// ImportStory merges a single story payload into the active project,
// replacing the story if its id already exists.
func (s *Service) ImportStory(payload models.ExportedStoryData) error {
	if payload.App != models.App {
		return fmt.Errorf("import story: %w", manifest.ErrInvalidSource)
	}
	if payload.SchemaVersion > models.SchemaVersion {
		return ErrVersionTooNew
	}

	root, err := s.requireActiveRoot()
	if err != nil {
		return err
	}
	if err := manifest.EnsureLayout(root); err != nil {
		return err
	}
	m, err := manifest.Read(root)
	if err != nil {
		return err
	}

	// An existing entry keeps its folder so assets and the database stay
	// where they are.
	folderName := paths.StoryFolderName(payload.Story.Title, payload.Story.ID)
	if idx := m.FindEntry(payload.Story.ID); idx >= 0 {
		folderName = m.Stories[idx].FolderName
		m.Stories[idx].Story = payload.Story
	} else {
		m.Stories = append(m.Stories, manifest.Entry{
			Story:      payload.Story,
			FolderName: folderName,
		})
	}

	if err := manifest.Write(root, m); err != nil {
		return err
	}
	return workspace.Write(paths.StoryDBPath(root, folderName), payload.Workspace)
}
