// Package server exposes the project service to the front end as local
// request/response commands: POST /rpc/<command> with a JSON body, answered
// with {ok, result} or {ok, error}. Errors cross the boundary as plain
// strings; the taxonomy lives in the service layer.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/takecopter/backend/pkg/models"
	"github.com/takecopter/backend/pkg/project"
)

// Server dispatches RPC commands to the project service.
type Server struct {
	svc *project.Service
	log *logrus.Logger
}

// New creates a Server around svc.
func New(svc *project.Service, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{svc: svc, log: log}
}

type response struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// empty is the request type for commands that take no arguments.
type empty struct{}

type storyIDRequest struct {
	StoryID string `json:"storyId"`
}

type rootPathRequest struct {
	RootPath string `json:"rootPath"`
}

type renameStoryRequest struct {
	StoryID string `json:"storyId"`
	Title   string `json:"title"`
}

type updateSettingsRequest struct {
	StoryID  string            `json:"storyId"`
	Settings []json.RawMessage `json:"settings"`
}

type updateTreeRequest struct {
	StoryID string            `json:"storyId"`
	Tree    []json.RawMessage `json:"tree"`
}

type updateStoryLibraryRequest struct {
	StoryID string                `json:"storyId"`
	Library models.SettingLibrary `json:"library"`
}

type updateGlobalLibraryRequest struct {
	Library models.SettingLibrary `json:"library"`
}

type pathResult struct {
	Path string `json:"path"`
}

// Handler returns the command mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	register(s, mux, "getBootstrapState", func(empty) (models.BootstrapState, error) {
		return s.svc.BootstrapState()
	})
	register(s, mux, "pickProjectRoot", func(empty) (pathResult, error) {
		path, err := s.svc.PickProjectRoot()
		return pathResult{Path: path}, err
	})
	register(s, mux, "initializeProjectRoot", func(req rootPathRequest) (empty, error) {
		return empty{}, s.svc.InitializeProjectRoot(req.RootPath)
	})
	register(s, mux, "openProjectRoot", func(req rootPathRequest) (empty, error) {
		return empty{}, s.svc.OpenProjectRoot(req.RootPath)
	})
	register(s, mux, "ensureProject", func(empty) (models.EnsureProjectResponse, error) {
		return s.svc.EnsureProject()
	})
	register(s, mux, "createStory", func(req models.CreateStoryInput) (models.Story, error) {
		return s.svc.CreateStory(req)
	})
	register(s, mux, "renameStory", func(req renameStoryRequest) (models.Story, error) {
		return s.svc.RenameStory(req.StoryID, req.Title)
	})
	register(s, mux, "deleteStory", func(req storyIDRequest) (empty, error) {
		return empty{}, s.svc.DeleteStory(req.StoryID)
	})
	register(s, mux, "updateSettings", func(req updateSettingsRequest) (empty, error) {
		return empty{}, s.svc.UpdateSettings(req.StoryID, req.Settings)
	})
	register(s, mux, "updateTree", func(req updateTreeRequest) (empty, error) {
		return empty{}, s.svc.UpdateTree(req.StoryID, req.Tree)
	})
	register(s, mux, "updateStoryLibrary", func(req updateStoryLibraryRequest) (empty, error) {
		return empty{}, s.svc.UpdateStoryLibrary(req.StoryID, req.Library)
	})
	register(s, mux, "updateGlobalLibrary", func(req updateGlobalLibraryRequest) (empty, error) {
		return empty{}, s.svc.UpdateGlobalLibrary(req.Library)
	})
	register(s, mux, "exportProject", func(empty) (models.ExportedProjectData, error) {
		return s.svc.ExportProject()
	})
	register(s, mux, "exportStory", func(req storyIDRequest) (models.ExportedStoryData, error) {
		return s.svc.ExportStory(req.StoryID)
	})
	register(s, mux, "exportProjectToLocal", func(empty) (pathResult, error) {
		path, err := s.svc.ExportProjectToLocal()
		return pathResult{Path: path}, err
	})
	register(s, mux, "exportStoryToLocal", func(req storyIDRequest) (pathResult, error) {
		path, err := s.svc.ExportStoryToLocal(req.StoryID)
		return pathResult{Path: path}, err
	})
	register(s, mux, "backupLocalDatabase", func(empty) (pathResult, error) {
		path, err := s.svc.BackupLocalDatabase()
		return pathResult{Path: path}, err
	})
	register(s, mux, "importProject", func(req models.ExportedProjectData) (empty, error) {
		return empty{}, s.svc.ImportProject(req)
	})
	register(s, mux, "importStory", func(req models.ExportedStoryData) (empty, error) {
		return empty{}, s.svc.ImportStory(req)
	})
	register(s, mux, "openStoryFolder", func(req storyIDRequest) (empty, error) {
		return empty{}, s.svc.OpenStoryFolder(req.StoryID)
	})
	register(s, mux, "openStoryDatabase", func(req storyIDRequest) (empty, error) {
		return empty{}, s.svc.OpenStoryDatabase(req.StoryID)
	})

	return mux
}

// register wires one command onto the mux. Commands are POST-only; an empty
// body is accepted for commands without arguments.
func register[Req, Resp any](s *Server, mux *http.ServeMux, name string, fn func(Req) (Resp, error)) {
	mux.HandleFunc("/rpc/"+name, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		started := time.Now()

		var req Req
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			s.writeError(w, name, err)
			return
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &req); err != nil {
				s.writeError(w, name, err)
				return
			}
		}

		result, err := fn(req)
		if err != nil {
			s.writeError(w, name, err)
			return
		}

		encoded, err := json.Marshal(result)
		if err != nil {
			s.writeError(w, name, err)
			return
		}
		s.log.WithFields(logrus.Fields{
			"command":  name,
			"duration": time.Since(started),
		}).Debug("command handled")
		writeJSON(w, http.StatusOK, response{OK: true, Result: encoded})
	})
}

func (s *Server) writeError(w http.ResponseWriter, name string, err error) {
	s.log.WithField("command", name).WithError(err).Warn("command failed")
	writeJSON(w, http.StatusOK, response{OK: false, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves the command mux on addr. Intended for loopback
// addresses only; there is no auth layer.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.WithField("addr", addr).Info("backend listening")
	return srv.ListenAndServe()
}
