package models

import "encoding/json"

// App is the manifest/export source marker. Manifests and import payloads
// carrying any other value are rejected.
const App = "takecopter"

// SchemaVersion is the current manifest and export schema version. Imports
// with a newer version are refused.
const SchemaVersion = 1

// Story is a titled unit of creative content. The id (a UUID) is the only
// stable identity; the on-disk folder name is derived from title+id and is
// recomputed on rename.
type Story struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UpdatedAt   string `json:"updatedAt"`
	CoverColor  string `json:"coverColor"`
}

// SettingTag is a named, colored label usable on settings.
type SettingTag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SettingCustomField is a free-form key/value field on a template preset.
type SettingCustomField struct {
	Name  string  `json:"name"`
	Value string  `json:"value"`
	Size  *string `json:"size,omitempty"`
}

// SettingTemplatePreset holds the prefilled content of a setting template.
type SettingTemplatePreset struct {
	Type         string               `json:"type"`
	Summary      *string              `json:"summary,omitempty"`
	Content      *string              `json:"content,omitempty"`
	ImageURL     *string              `json:"imageUrl,omitempty"`
	Category     *string              `json:"category,omitempty"`
	Tags         []SettingTag         `json:"tags"`
	CustomFields []SettingCustomField `json:"customFields"`
	Color        *string              `json:"color,omitempty"`
}

// SettingTemplate is a named preset for creating settings.
type SettingTemplate struct {
	ID     string                `json:"id"`
	Name   string                `json:"name"`
	Preset SettingTemplatePreset `json:"preset"`
}

// SettingLibrary groups tags, categories and templates. It exists at both
// project scope (shared) and story scope.
type SettingLibrary struct {
	Tags       []SettingTag      `json:"tags"`
	Categories []string          `json:"categories"`
	Templates  []SettingTemplate `json:"templates"`
}

// DefaultLibrary returns the library a fresh story or project starts with.
func DefaultLibrary() SettingLibrary {
	return SettingLibrary{
		Tags:       []SettingTag{},
		Categories: []string{"worldbuilding", "characters", "props"},
		Templates:  []SettingTemplate{},
	}
}

// Workspace is the per-story payload: settings and tree are opaque ordered
// JSON documents owned by the front end; the backend persists them verbatim
// and never interprets their shape.
type Workspace struct {
	Settings []json.RawMessage `json:"settings"`
	Tree     []json.RawMessage `json:"tree"`
	Library  SettingLibrary    `json:"library"`
}

// EmptyWorkspace returns a workspace with empty (non-nil) collections so it
// serializes as [] rather than null.
func EmptyWorkspace() Workspace {
	return Workspace{
		Settings: []json.RawMessage{},
		Tree:     []json.RawMessage{},
		Library:  DefaultLibrary(),
	}
}

// Normalize replaces nil slices with empty ones. Payloads that crossed the
// IPC boundary may carry nulls where the schema expects arrays.
func (w *Workspace) Normalize() {
	if w.Settings == nil {
		w.Settings = []json.RawMessage{}
	}
	if w.Tree == nil {
		w.Tree = []json.RawMessage{}
	}
	w.Library.Normalize()
}

// Normalize replaces nil slices with empty ones.
func (l *SettingLibrary) Normalize() {
	if l.Tags == nil {
		l.Tags = []SettingTag{}
	}
	if l.Categories == nil {
		l.Categories = []string{}
	}
	if l.Templates == nil {
		l.Templates = []SettingTemplate{}
	}
}

// ProjectData is the full in-memory view of a project root.
type ProjectData struct {
	Stories       []Story              `json:"stories"`
	Workspaces    map[string]Workspace `json:"workspaces"`
	SharedLibrary SettingLibrary       `json:"sharedLibrary"`
}

// EnsureProjectResponse pairs loaded project data with the root it came from.
type EnsureProjectResponse struct {
	ProjectPath string      `json:"projectPath"`
	Data        ProjectData `json:"data"`
}

// BootstrapState tells the front end whether a project root is active.
type BootstrapState struct {
	NeedsSetup      bool    `json:"needsSetup"`
	DefaultRootPath string  `json:"defaultRootPath"`
	ActiveRootPath  *string `json:"activeRootPath,omitempty"`
}

// CreateStoryInput carries the user-supplied fields for a new story.
type CreateStoryInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ExportedProjectData is the versioned whole-project snapshot format.
type ExportedProjectData struct {
	App           string      `json:"app"`
	SchemaVersion int64       `json:"schemaVersion"`
	ExportedAt    string      `json:"exportedAt"`
	Data          ProjectData `json:"data"`
}

// ExportedStoryData is the versioned single-story snapshot format.
type ExportedStoryData struct {
	App           string    `json:"app"`
	SchemaVersion int64     `json:"schemaVersion"`
	ExportedAt    string    `json:"exportedAt"`
	Story         Story     `json:"story"`
	Workspace     Workspace `json:"workspace"`
}
