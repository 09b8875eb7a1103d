// Package adapter contains the filesystem and persistence adapters for the
// restitch CLI.
package adapter

import (
	"os"

	m "restitch.dev/pkg/restitch/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the workflow performs
// on unit files. It intentionally hides direct `os` access so the batch logic
// can be tested without touching the disk.
type SourceFSAdapter interface {
	// FileInfo returns metadata for a path so the workflow can check
	// existence before reading.
	FileInfo(path m.Path) (os.FileInfo, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile replaces the file at path with content. Permissions apply
	// only when the file does not exist yet.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error
}

// LocalSourceFSAdapter is the os-backed implementation wired into the
// workflow by default.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}
