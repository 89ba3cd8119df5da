package project

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/takecopter/backend/pkg/manifest"
	"github.com/takecopter/backend/pkg/models"
	"github.com/takecopter/backend/pkg/paths"
	"github.com/takecopter/backend/pkg/workspace"
)

// coverPalette matches the front end's CSS custom properties. A new story
// gets a pseudo-random pick by hashing the creation timestamp.
var coverPalette = [...]string{
	"var(--coral-400)",
	"var(--violet-400)",
	"var(--teal-400)",
	"var(--amber-400)",
	"var(--rose-400)",
}

func pickCoverColor(at time.Time) string {
	return coverPalette[at.UnixMilli()%int64(len(coverPalette))]
}

// CreateStory allocates a new story with an empty workspace and appends it
// to the manifest.
func (s *Service) CreateStory(input models.CreateStoryInput) (models.Story, error) {
	root, err := s.requireActiveRoot()
	if err != nil {
		return models.Story{}, err
	}
	if err := manifest.EnsureLayout(root); err != nil {
		return models.Story{}, err
	}
	m, err := manifest.Read(root)
	if err != nil {
		return models.Story{}, err
	}

	now := time.Now()
	story := models.Story{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		UpdatedAt:   now.UTC().Format(time.RFC3339),
		CoverColor:  pickCoverColor(now),
	}
	folderName := paths.StoryFolderName(story.Title, story.ID)

	if err := workspace.Write(paths.StoryDBPath(root, folderName), models.EmptyWorkspace()); err != nil {
		return models.Story{}, err
	}

	m.Stories = append(m.Stories, manifest.Entry{Story: story, FolderName: folderName})
	if err := manifest.Write(root, m); err != nil {
		return models.Story{}, err
	}

	s.log.WithField("story", story.ID).Info("story created")
	return story, nil
}

// RenameStory retitles a story and renames its folder to the newly derived
// name. A derived name already taken by another folder is a conflict and
// nothing is touched.
func (s *Service) RenameStory(storyID, title string) (models.Story, error) {
	cleanTitle := strings.TrimSpace(title)
	if cleanTitle == "" {
		return models.Story{}, ErrValidation
	}

	root, err := s.requireActiveRoot()
	if err != nil {
		return models.Story{}, err
	}
	m, err := manifest.Read(root)
	if err != nil {
		return models.Story{}, err
	}
	idx := m.FindEntry(storyID)
	if idx < 0 {
		return models.Story{}, ErrNotFound
	}
	entry := &m.Stories[idx]

	nextFolderName := paths.StoryFolderName(cleanTitle, storyID)
	if entry.FolderName != nextFolderName {
		oldPath := paths.StoryDir(root, entry.FolderName)
		nextPath := paths.StoryDir(root, nextFolderName)
		if _, err := os.Stat(oldPath); err == nil {
			if _, err := os.Stat(nextPath); err == nil {
				return models.Story{}, ErrConflict
			}
			if err := os.Rename(oldPath, nextPath); err != nil {
				return models.Story{}, fmt.Errorf("rename story folder: %w", err)
			}
		}
		entry.FolderName = nextFolderName
	}

	entry.Story.Title = cleanTitle
	entry.Story.UpdatedAt = manifest.Now()

	if err := manifest.Write(root, m); err != nil {
		return models.Story{}, err
	}
	return entry.Story, nil
}

// DeleteStory removes a story's folder tree and its manifest entry.
func (s *Service) DeleteStory(storyID string) error {
	root, err := s.requireActiveRoot()
	if err != nil {
		return err
	}
	m, err := manifest.Read(root)
	if err != nil {
		return err
	}
	idx := m.FindEntry(storyID)
	if idx < 0 {
		return ErrNotFound
	}

	folderPath := paths.StoryDir(root, m.Stories[idx].FolderName)
	if _, err := os.Stat(folderPath); err == nil {
		if err := os.RemoveAll(folderPath); err != nil {
			return fmt.Errorf("delete story folder: %w", err)
		}
	}

	m.Stories = append(m.Stories[:idx], m.Stories[idx+1:]...)
	if err := manifest.Write(root, m); err != nil {
		return err
	}
	s.log.WithField("story", storyID).Info("story deleted")
	return nil
}

// UpdateSettings replaces a story's settings, leaving tree and library
// untouched, and bumps updatedAt.
func (s *Service) UpdateSettings(storyID string, settings []json.RawMessage) error {
	return s.updateWorkspace(storyID, func(ws *models.Workspace) {
		ws.Settings = settings
	})
}

// UpdateTree replaces a story's content tree, leaving settings and library
// untouched, and bumps updatedAt.
func (s *Service) UpdateTree(storyID string, tree []json.RawMessage) error {
	return s.updateWorkspace(storyID, func(ws *models.Workspace) {
		ws.Tree = tree
	})
}

// UpdateStoryLibrary replaces a story's setting library and bumps updatedAt.
func (s *Service) UpdateStoryLibrary(storyID string, library models.SettingLibrary) error {
	return s.updateWorkspace(storyID, func(ws *models.Workspace) {
		ws.Library = library
	})
}

// updateWorkspace is the shared read-modify-write cycle for the single
// workspace row: the untouched parts of the row survive because the whole
// row is read back before mutate is applied.
func (s *Service) updateWorkspace(storyID string, mutate func(*models.Workspace)) error {
	root, err := s.requireActiveRoot()
	if err != nil {
		return err
	}
	m, err := manifest.Read(root)
	if err != nil {
		return err
	}
	idx := m.FindEntry(storyID)
	if idx < 0 {
		return ErrNotFound
	}
	entry := &m.Stories[idx]

	dbPath := paths.StoryDBPath(root, entry.FolderName)
	ws, err := workspace.Read(dbPath)
	if err != nil {
		return err
	}
	mutate(&ws)
	if err := workspace.Write(dbPath, ws); err != nil {
		return err
	}

	entry.Story.UpdatedAt = manifest.Now()
	return manifest.Write(root, m)
}

// UpdateGlobalLibrary replaces the project-wide shared library.
func (s *Service) UpdateGlobalLibrary(library models.SettingLibrary) error {
	root, err := s.requireActiveRoot()
	if err != nil {
		return err
	}
	m, err := manifest.Read(root)
	if err != nil {
		return err
	}
	library.Normalize()
	m.SharedLibrary = library
	return manifest.Write(root, m)
}

// OpenStoryFolder reveals a story's folder in the OS file manager.
func (s *Service) OpenStoryFolder(storyID string) error {
	root, m, err := s.readManifestForStory(storyID)
	if err != nil {
		return err
	}
	return s.openPath(paths.StoryDir(root, m.Stories[m.FindEntry(storyID)].FolderName))
}

// OpenStoryDatabase reveals a story's database file in the OS file manager.
func (s *Service) OpenStoryDatabase(storyID string) error {
	root, m, err := s.readManifestForStory(storyID)
	if err != nil {
		return err
	}
	return s.openPath(paths.StoryDBPath(root, m.Stories[m.FindEntry(storyID)].FolderName))
}

func (s *Service) readManifestForStory(storyID string) (string, manifest.Manifest, error) {
	root, err := s.requireActiveRoot()
	if err != nil {
		return "", manifest.Manifest{}, err
	}
	m, err := manifest.Read(root)
	if err != nil {
		return "", manifest.Manifest{}, err
	}
	if m.FindEntry(storyID) < 0 {
		return "", manifest.Manifest{}, ErrNotFound
	}
	return root, m, nil
}
