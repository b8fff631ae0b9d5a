package shim

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

// Defaults for archives that ship no manifest.
const (
	defaultArchiveAlias = "payload"
	defaultArchiveEntry = "index.js"
)

const manifestName = "manifest.yaml"

// Archive is a bundled application opened as a read-only virtual filesystem.
// The guest sees it mounted under /<alias>.
type Archive struct {
	alias string
	entry string
	fsys  fs.FS
	sum   [sha256.Size]byte
	refs  int
}

type manifest struct {
	Alias string `yaml:"alias"`
	Entry string `yaml:"entry"`
}

// openArchive parses raw as a zip archive and applies its manifest, if any.
func openArchive(raw []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	a := &Archive{
		alias: defaultArchiveAlias,
		entry: defaultArchiveEntry,
		fsys:  zr,
		sum:   sha256.Sum256(raw),
	}

	data, err := fs.ReadFile(zr, manifestName)
	if err != nil {
		// Manifest is optional; the defaults stand.
		return a, nil
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", manifestName, err)
	}
	if m.Alias != "" {
		a.alias = m.Alias
	}
	if m.Entry != "" {
		a.entry = m.Entry
	}
	return a, nil
}

// Alias returns the name the archive is registered and mounted under.
func (a *Archive) Alias() string { return a.alias }

// MountPath returns the guest path the archive is mounted at.
func (a *Archive) MountPath() string { return "/" + a.alias }

// EntryPath returns the guest path of the archive's entry script.
func (a *Archive) EntryPath() string { return path.Join(a.MountPath(), a.entry) }

// Open opens a file inside the archive, for host-side inspection.
func (a *Archive) Open(name string) (fs.File, error) { return a.fsys.Open(name) }

// LoadArchive registers a zip archive with the shim and mounts it in the
// guest filesystem under /<alias>. Loading identical bytes under a taken
// alias returns the existing registration; conflicting bytes are rejected.
func (s *Shim) LoadArchive(raw []byte) (*Archive, error) {
	a, err := openArchive(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if prev, ok := s.archives[a.alias]; ok {
		if prev.sum != a.sum {
			return nil, fmt.Errorf("archive %q already registered with different contents", a.alias)
		}
		prev.refs++
		return prev, nil
	}

	a.refs = 1
	s.archives[a.alias] = a
	s.mounts = append(s.mounts, a)
	return a, nil
}
