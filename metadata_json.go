package dotthz

import (
	"github.com/goccy/go-json"
)

// ToJSON serializes the metadata record. The md mapping keeps its
// insertion order in the output.
func (m *Metadata) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MetadataFromJSON deserializes a metadata record produced by ToJSON.
func MetadataFromJSON(data []byte) (*Metadata, error) {
	m := NewMetadata()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
