package pack

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Version is a semantic version triple as used by manifests.
type Version [3]int

// String formats v as major.minor.patch.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

// ParseVersion reads a dotted triple such as "0.0.3".
func ParseVersion(value string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(value), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("version %q: expected major.minor.patch", value)
	}
	var v Version
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("version %q: invalid component %q", value, part)
		}
		v[i] = n
	}
	return v, nil
}

// VersionFromSlice converts a config triple into a Version.
func VersionFromSlice(values []int) Version {
	var v Version
	copy(v[:], values)
	return v
}

// Identity is the pair of manifest UUIDs plus the pack version.
type Identity struct {
	HeaderUUID string
	ModuleUUID string
	Version    Version
}

// NewIdentity allocates fresh UUIDs at version 0.0.1.
func NewIdentity() Identity {
	return Identity{
		HeaderUUID: uuid.NewString(),
		ModuleUUID: uuid.NewString(),
		Version:    Version{0, 0, 1},
	}
}

// Bump returns the identity with the patch version incremented.
func (id Identity) Bump() Identity {
	id.Version[2]++
	return id
}

// ManifestOptions carries the configurable manifest fields.
type ManifestOptions struct {
	Description       string
	MinEngineVersion  Version
	DependencyUUID    string
	DependencyVersion Version
}

// Manifest is the manifest.json document. Field order is part of the
// on-disk format.
type Manifest struct {
	FormatVersion int          `json:"format_version"`
	Header        Header       `json:"header"`
	Modules       []Module     `json:"modules"`
	Dependencies  []Dependency `json:"dependencies"`
}

// Header identifies the pack and the engine version it targets.
type Header struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	MinEngineVersion Version `json:"min_engine_version"`
	UUID             string  `json:"uuid"`
	Version          Version `json:"version"`
}

// Module declares the pack's resources module.
type Module struct {
	Type    string  `json:"type"`
	UUID    string  `json:"uuid"`
	Version Version `json:"version"`
}

// Dependency names another pack that must be active alongside this one.
type Dependency struct {
	UUID    string  `json:"uuid"`
	Version Version `json:"version"`
}

// NewManifest builds the manifest for a resource pack named name.
func NewManifest(name string, id Identity, opts ManifestOptions) Manifest {
	manifest := Manifest{
		FormatVersion: 2,
		Header: Header{
			Name:             name,
			Description:      opts.Description,
			MinEngineVersion: opts.MinEngineVersion,
			UUID:             id.HeaderUUID,
			Version:          id.Version,
		},
		Modules: []Module{{
			Type:    "resources",
			UUID:    id.ModuleUUID,
			Version: id.Version,
		}},
		Dependencies: []Dependency{},
	}
	if dep := strings.TrimSpace(opts.DependencyUUID); dep != "" {
		manifest.Dependencies = append(manifest.Dependencies, Dependency{UUID: dep, Version: opts.DependencyVersion})
	}
	return manifest
}

// MarshalIndented renders the manifest with four-space indentation.
func (m Manifest) MarshalIndented() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}
