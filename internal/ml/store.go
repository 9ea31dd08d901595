package ml

import (
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactStore persists trained model artifacts.
type ArtifactStore interface {
	// Save durably stores the artifact, replacing any previous one.
	Save(a *Artifact) error
	// Load returns the stored artifact, or (nil, nil) when none exists.
	Load() (*Artifact, error)
}

// FileStore keeps the artifact as a single file on disk. Saves go through a
// temp file and rename so readers never observe a half-written artifact.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed artifact store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the artifact file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Save(a *Artifact) error {
	data, err := a.Serialize()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish artifact: %w", err)
	}

	return nil
}

func (s *FileStore) Load() (*Artifact, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return DeserializeArtifact(data)
}
