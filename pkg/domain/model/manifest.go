package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// Manifest is the integration metadata file whose version field drives
// release tagging. Only the fields the gate cares about are modeled; the
// version is an opaque string, not guaranteed to be valid semver.
type Manifest struct {
	Domain        string `json:"domain"`
	Name          string `json:"name"`
	Version       string `json:"version"`
	Documentation string `json:"documentation,omitempty"`
}

// ParseManifest parses raw manifest JSON and requires a non-empty version
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, goerr.Wrap(err, "failed to parse manifest JSON")
	}

	if m.Version == "" {
		return nil, goerr.New("manifest has no version field")
	}

	return &m, nil
}
