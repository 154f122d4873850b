package domain

import (
	"encoding/json"

	"go.trai.ch/zerr"
)

// Manifest is the ordered list of per-directory keys stored under a primary key.
type Manifest []string

// ParseManifest decodes manifest file content.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, zerr.Wrap(err, ErrManifestParseFailed.Error())
	}
	return m, nil
}

// Encode renders the manifest as a JSON array. An empty manifest encodes as [].
func (m Manifest) Encode() ([]byte, error) {
	if m == nil {
		m = Manifest{}
	}
	data, err := json.Marshal([]string(m))
	if err != nil {
		return nil, zerr.Wrap(err, ErrManifestWriteFailed.Error())
	}
	return data, nil
}
