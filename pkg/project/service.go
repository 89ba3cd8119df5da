// Package project orchestrates the persistence backend: the active project
// root, the manifest, and per-story workspaces. Every operation the front
// end can invoke lives on Service.
package project

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/takecopter/backend/pkg/fsutil"
	"github.com/takecopter/backend/pkg/manifest"
	"github.com/takecopter/backend/pkg/models"
	"github.com/takecopter/backend/pkg/paths"
	"github.com/takecopter/backend/pkg/workspace"
)

// Config holds service configuration.
type Config struct {
	// DataDir is the app data directory holding the selection state file
	// and the default project root. Empty means the platform default.
	DataDir string
	Logger  *logrus.Logger
}

// Service implements all project commands. The only shared mutable state is
// the active-root cell; it is guarded by mu and the lock is never held
// across file or database I/O. Commands re-read the manifest from disk on
// every call, so concurrent mutations are last-write-wins by design.
type Service struct {
	mu   sync.Mutex
	root string

	paths paths.Paths
	log   *logrus.Logger

	// openPath is swapped out in tests so they do not launch a file manager.
	openPath func(string) error
}

// New creates a Service.
func New(cfg *Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.WarnLevel)
	}
	return &Service{
		paths:    paths.New(cfg.DataDir),
		log:      log,
		openPath: fsutil.OpenInFileManager,
	}
}

// activeRoot returns the current root: the in-memory cell when set,
// otherwise the persisted selection. Empty means no root is active.
func (s *Service) activeRoot() (string, error) {
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()
	if root != "" {
		return root, nil
	}
	return s.paths.ReadActiveRoot()
}

// setActiveRoot updates the cell and persists the selection.
func (s *Service) setActiveRoot(root string) error {
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	return s.paths.WriteActiveRoot(root)
}

// requireActiveRoot errors when no project has been selected yet.
func (s *Service) requireActiveRoot() (string, error) {
	root, err := s.activeRoot()
	if err != nil {
		return "", err
	}
	if root == "" {
		return "", ErrNoActiveRoot
	}
	return root, nil
}

// BootstrapState reports whether setup is needed and which roots exist.
func (s *Service) BootstrapState() (models.BootstrapState, error) {
	active, err := s.activeRoot()
	if err != nil {
		return models.BootstrapState{}, err
	}

	state := models.BootstrapState{
		NeedsSetup:      active == "",
		DefaultRootPath: s.paths.DefaultRoot(),
	}
	if active != "" {
		state.ActiveRootPath = &active
	}
	return state, nil
}

// PickProjectRoot returns the path to suggest in the front end's directory
// picker. The native dialog itself belongs to the UI layer; the chosen path
// comes back through InitializeProjectRoot or OpenProjectRoot.
func (s *Service) PickProjectRoot() (string, error) {
	active, err := s.activeRoot()
	if err != nil {
		return "", err
	}
	if active != "" {
		return active, nil
	}
	return s.paths.DefaultRoot(), nil
}

// InitializeProjectRoot creates (or reuses) a project root and makes it
// active. An empty rootPath selects the default root under the data dir.
func (s *Service) InitializeProjectRoot(rootPath string) error {
	target := strings.TrimSpace(rootPath)
	if target == "" {
		target = s.paths.DefaultRoot()
	}

	if err := manifest.EnsureLayout(target); err != nil {
		return err
	}
	s.log.WithField("root", target).Info("project root initialized")
	return s.setActiveRoot(target)
}

// OpenProjectRoot activates an existing project root. The directory must
// exist and already contain a manifest; the two failures are distinct so
// the front end can guide the user accordingly.
func (s *Service) OpenProjectRoot(rootPath string) error {
	target := strings.TrimSpace(rootPath)
	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return ErrRootNotFound
		}
		return fmt.Errorf("stat project directory: %w", err)
	}
	if _, err := os.Stat(paths.ManifestPath(target)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotAProject
		}
		return fmt.Errorf("stat project manifest: %w", err)
	}

	if err := manifest.EnsureLayout(target); err != nil {
		return err
	}
	if _, err := manifest.Read(target); err != nil {
		return err
	}
	s.log.WithField("root", target).Info("project root opened")
	return s.setActiveRoot(target)
}

// EnsureProject loads the full project for the active root, repairing the
// directory layout and migrating legacy story folders on the way.
func (s *Service) EnsureProject() (models.EnsureProjectResponse, error) {
	root, err := s.requireActiveRoot()
	if err != nil {
		return models.EnsureProjectResponse{}, err
	}
	if err := manifest.EnsureLayout(root); err != nil {
		return models.EnsureProjectResponse{}, err
	}
	data, err := s.loadProjectData(root)
	if err != nil {
		return models.EnsureProjectResponse{}, err
	}
	return models.EnsureProjectResponse{ProjectPath: root, Data: data}, nil
}

// loadProjectData reads the manifest and every story workspace. Stories are
// returned most recently updated first. Story folders still living under
// their bare id (the pre-slug layout) are renamed to the derived folder
// name here.
func (s *Service) loadProjectData(root string) (models.ProjectData, error) {
	m, err := manifest.Read(root)
	if err != nil {
		return models.ProjectData{}, err
	}

	sortEntriesByUpdatedAt(m.Stories)

	workspaces := make(map[string]models.Workspace, len(m.Stories))
	for _, entry := range m.Stories {
		storyDir := paths.StoryDir(root, entry.FolderName)
		legacyDir := paths.StoryDir(root, entry.Story.ID)

		if entry.FolderName != entry.Story.ID {
			if _, err := os.Stat(storyDir); os.IsNotExist(err) {
				if _, err := os.Stat(legacyDir); err == nil {
					if err := os.Rename(legacyDir, storyDir); err != nil {
						return models.ProjectData{}, fmt.Errorf("migrate story folder: %w", err)
					}
					s.log.WithFields(logrus.Fields{
						"story":  entry.Story.ID,
						"folder": entry.FolderName,
					}).Info("migrated legacy story folder")
				}
			}
		}

		ws, err := workspace.Read(paths.StoryDBPath(root, entry.FolderName))
		if err != nil {
			return models.ProjectData{}, err
		}
		workspaces[entry.Story.ID] = ws
	}

	stories := make([]models.Story, 0, len(m.Stories))
	for _, entry := range m.Stories {
		stories = append(stories, entry.Story)
	}

	return models.ProjectData{
		Stories:       stories,
		Workspaces:    workspaces,
		SharedLibrary: m.SharedLibrary,
	}, nil
}

func sortEntriesByUpdatedAt(entries []manifest.Entry) {
	// RFC3339 UTC timestamps sort lexically; newest first.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Story.UpdatedAt > entries[j].Story.UpdatedAt
	})
}
