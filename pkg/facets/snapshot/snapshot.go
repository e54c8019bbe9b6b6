package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is the current envelope format version.
const Version = 1

// Snapshot wraps a serialized document with the metadata needed to find
// and restore it.
type Snapshot struct {
	Version   int             `json:"version"`
	OwnerID   string          `json:"owner_id"`
	Name      string          `json:"name"`
	Timestamp time.Time       `json:"timestamp"`
	Document  json.RawMessage `json:"document"`
}

// New creates an envelope for document, which must already be JSON.
func New(ownerID, name string, document []byte) *Snapshot {
	return &Snapshot{
		Version:   Version,
		OwnerID:   ownerID,
		Name:      name,
		Timestamp: time.Now().UTC(),
		Document:  document,
	}
}

// Marshal serializes the envelope to JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal deserializes an envelope and checks its version.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	return &s, nil
}

// ExportYAML renders the envelope, document included, as YAML for
// inspection. The result is not read back by this package.
func (s *Snapshot) ExportYAML() ([]byte, error) {
	var doc any
	if len(s.Document) > 0 {
		if err := json.Unmarshal(s.Document, &doc); err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
	}

	out := struct {
		Version   int    `yaml:"version"`
		OwnerID   string `yaml:"owner_id"`
		Name      string `yaml:"name"`
		Timestamp string `yaml:"timestamp"`
		Document  any    `yaml:"document"`
	}{
		Version:   s.Version,
		OwnerID:   s.OwnerID,
		Name:      s.Name,
		Timestamp: s.Timestamp.Format(time.RFC3339Nano),
		Document:  doc,
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("export yaml: %w", err)
	}
	return data, nil
}
