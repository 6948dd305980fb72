package store

// MockArtifactStore is an in-memory ArtifactReader for tests.
type MockArtifactStore struct {
	Path string
	Data []byte

	// ReadError is returned by ReadArtifact when set.
	ReadError error
}

// ReadArtifact returns the mock content.
func (m *MockArtifactStore) ReadArtifact() (string, []byte, error) {
	if m.ReadError != nil {
		return m.Path, nil, m.ReadError
	}
	return m.Path, m.Data, nil
}
