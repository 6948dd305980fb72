// Package store locates and reads the serialized model artifact.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/txn-classifier/internal/logging"
)

// DefaultArtifactFile is used when no artifact path is configured.
const DefaultArtifactFile = "model.yaml"

// ArtifactReader is implemented by anything able to hand out the raw artifact bytes.
type ArtifactReader interface {
	// ReadArtifact returns the resolved location and the file content.
	ReadArtifact() (string, []byte, error)
}

// ArtifactStore resolves the model artifact from a configured name or path.
type ArtifactStore struct {
	ArtifactFile string
	logger       logging.Logger
}

// NewArtifactStore creates a store for the given artifact file.
func NewArtifactStore(artifactFile string, logger logging.Logger) *ArtifactStore {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &ArtifactStore{
		ArtifactFile: artifactFile,
		logger:       logger,
	}
}

// FindArtifact looks for filename in the standard locations:
// an absolute path as given, then the working directory, ./models and
// $HOME/.config/txn-classifier.
func (s *ArtifactStore) FindArtifact(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("models", filename),
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "txn-classifier", filename))
	}

	for _, location := range locations {
		if info, err := os.Stat(location); err == nil && !info.IsDir() {
			return location, nil
		}
	}

	return "", os.ErrNotExist
}

// ReadArtifact resolves the configured artifact and reads it.
func (s *ArtifactStore) ReadArtifact() (string, []byte, error) {
	filename := s.ArtifactFile
	if filename == "" {
		filename = DefaultArtifactFile
	}

	path, err := s.FindArtifact(filename)
	if err != nil {
		s.logger.Warn("Model artifact not found",
			logging.Field{Key: logging.FieldModelPath, Value: filename})
		return filename, nil, fmt.Errorf("artifact %s: %w", filename, err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is operator configuration
	if err != nil {
		return path, nil, fmt.Errorf("error reading artifact: %w", err)
	}

	s.logger.Debug("Read model artifact",
		logging.Field{Key: logging.FieldModelPath, Value: path},
		logging.Field{Key: "bytes", Value: len(data)})
	return path, data, nil
}
