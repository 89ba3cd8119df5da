package project

import "errors"

// The error taxonomy surfaced to the front end. Everything crossing the IPC
// boundary is flattened to the message string, so the messages are written
// for end users; callers inside the process match with errors.Is.
var (
	ErrNoActiveRoot  = errors.New("no project selected; create a project directory or open an existing one first")
	ErrNotFound      = errors.New("story not found")
	ErrConflict      = errors.New("target story folder already exists; choose a different title")
	ErrValidation    = errors.New("story title cannot be empty")
	ErrVersionTooNew = errors.New("payload was created by a newer version; upgrade the app before importing")
	ErrRootNotFound  = errors.New("project directory does not exist")
	ErrNotAProject   = errors.New("no project.json found; create a project directory or pick a valid one")
)
