// Package manifest loads the declarative modpack manifest.
//
// The manifest is read once per build and treated as read-only afterwards.
// It lists two kinds of artifacts: external dependencies carrying their own
// URL and SHA-256 hash, and indexed files identified by a project/file pair
// that are resolved through the metadata service at build time.
package manifest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/Norgate-AV/mpb/internal/utils"
	"github.com/Norgate-AV/mpb/internal/verify"
)

// Manifest is the parsed manifest.json
type Manifest struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Author  string `json:"author,omitempty"`

	Minecraft Minecraft `json:"minecraft"`

	// ExternalDeps are downloaded directly and verified against their hash
	ExternalDeps []ExternalArtifact `json:"externalDeps"`

	// Files are resolved through the metadata service
	Files []IndexedArtifact `json:"files"`
}

// Minecraft holds the runtime version metadata
type Minecraft struct {
	Version    string      `json:"version"`
	ModLoaders []ModLoader `json:"modLoaders"`
}

// ModLoader identifies a loader build, e.g. "forge-14.23.5.2860"
type ModLoader struct {
	ID      string `json:"id"`
	Primary bool   `json:"primary,omitempty"`
}

// ExternalArtifact is a mod fetched from an arbitrary URL and checked
// against a known digest
type ExternalArtifact struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Hash string `json:"hash"`
}

// FileName is the artifact's identity: the final path segment of its URL
func (a ExternalArtifact) FileName() string {
	name, err := utils.FileNameFromURL(a.URL)
	if err != nil {
		return ""
	}

	return name
}

// IndexedArtifact is a mod identified by its project and file IDs
type IndexedArtifact struct {
	ProjectID int  `json:"projectID"`
	FileID    int  `json:"fileID"`
	Required  bool `json:"required,omitempty"`
}

// raw mirrors Manifest with pointers so that absent fields can be told
// apart from empty ones
type raw struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Author    string `json:"author"`
	Minecraft *struct {
		Version    *string      `json:"version"`
		ModLoaders *[]ModLoader `json:"modLoaders"`
	} `json:"minecraft"`
	ExternalDeps *[]ExternalArtifact `json:"externalDeps"`
	Files        *[]IndexedArtifact  `json:"files"`
}

// Load reads and validates the manifest at path. Every failure is returned
// as *Error.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	m, err := Parse(data)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	return m, nil
}

// Parse decodes and validates manifest bytes. Comments and trailing commas
// are tolerated.
func Parse(data []byte) (*Manifest, error) {
	var r raw
	if err := json.Unmarshal(jsonc.ToJSON(data), &r); err != nil {
		return nil, fmt.Errorf("malformed manifest: %w", err)
	}

	switch {
	case r.ExternalDeps == nil:
		return nil, missingField("externalDeps")
	case r.Files == nil:
		return nil, missingField("files")
	case r.Minecraft == nil || r.Minecraft.Version == nil || *r.Minecraft.Version == "":
		return nil, missingField("minecraft.version")
	case r.Minecraft.ModLoaders == nil || len(*r.Minecraft.ModLoaders) == 0:
		return nil, missingField("minecraft.modLoaders")
	}

	m := &Manifest{
		Name:    r.Name,
		Version: r.Version,
		Author:  r.Author,
		Minecraft: Minecraft{
			Version:    *r.Minecraft.Version,
			ModLoaders: *r.Minecraft.ModLoaders,
		},
		ExternalDeps: *r.ExternalDeps,
		Files:        *r.Files,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks the per-artifact invariants
func (m *Manifest) Validate() error {
	for i, loader := range m.Minecraft.ModLoaders {
		if loader.ID == "" {
			return fmt.Errorf("minecraft.modLoaders[%d]: missing id", i)
		}
	}

	seen := make(map[string]string, len(m.ExternalDeps))
	for i, dep := range m.ExternalDeps {
		if dep.Name == "" {
			return fmt.Errorf("externalDeps[%d]: missing name", i)
		}

		u, err := url.Parse(dep.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("externalDeps[%d] %s: url %q is not an http(s) location", i, dep.Name, dep.URL)
		}

		name, err := utils.FileNameFromURL(dep.URL)
		if err != nil || !utils.ValidFileName(name) {
			return fmt.Errorf("externalDeps[%d] %s: url %q has no usable file name", i, dep.Name, dep.URL)
		}

		if other, ok := seen[name]; ok {
			return fmt.Errorf("externalDeps[%d] %s: file name %s already used by %s", i, dep.Name, name, other)
		}
		seen[name] = dep.Name

		if err := verify.Validate(dep.Hash); err != nil {
			return fmt.Errorf("externalDeps[%d] %s: %w", i, dep.Name, err)
		}
	}

	for i, f := range m.Files {
		if f.ProjectID <= 0 || f.FileID <= 0 {
			return fmt.Errorf("files[%d]: projectID and fileID must be positive", i)
		}
	}

	return nil
}

// Loader returns the primary mod loader, or the first one listed
func (m *Manifest) Loader() ModLoader {
	for _, l := range m.Minecraft.ModLoaders {
		if l.Primary {
			return l
		}
	}

	return m.Minecraft.ModLoaders[0]
}

// LoaderVersion is the loader build without its name prefix,
// "forge-14.23.5.2860" yields "14.23.5.2860"
func (m *Manifest) LoaderVersion() string {
	return utils.LastSegment(m.Loader().ID, "-")
}

// Title is used as the heading of the generated modlist
func (m *Manifest) Title() string {
	if m.Name == "" {
		return "Modlist"
	}

	return m.Name + " modlist"
}

func missingField(name string) error {
	return fmt.Errorf("missing required field %q", name)
}
