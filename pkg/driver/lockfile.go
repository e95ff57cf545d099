package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lockfile models the rpal.lock contents.
type Lockfile struct {
	Path      string
	Project   string
	Generated string
	Tool      string
	Sources   []*LockedSource
}

// LockedSource pins one manifest source to a commit.
type LockedSource struct {
	Name   string
	Git    string
	Ref    string
	Commit string
}

// NewLockfile returns an empty lockfile for project, stamped with the
// current time and the tool that wrote it.
func NewLockfile(project, tool string) *Lockfile {
	return &Lockfile{
		Project:   sanitizeSegment(project),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Sources:   []*LockedSource{},
	}
}

// LoadLockfile parses rpal.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the pin for the named source.
func (l *Lockfile) Find(name string) (*LockedSource, bool) {
	if l == nil {
		return nil, false
	}
	name = sanitizeSegment(name)
	for _, src := range l.Sources {
		if src != nil && src.Name == name {
			return src, true
		}
	}
	return nil, false
}

// Put adds or replaces the pin for src.Name.
func (l *Lockfile) Put(src *LockedSource) {
	for i, existing := range l.Sources {
		if existing != nil && existing.Name == src.Name {
			l.Sources[i] = src
			return
		}
	}
	l.Sources = append(l.Sources, src)
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Project = sanitizeSegment(l.Project)
	l.Tool = strings.TrimSpace(l.Tool)
	sources := l.Sources[:0]
	for _, src := range l.Sources {
		if src == nil {
			continue
		}
		src.Name = sanitizeSegment(src.Name)
		src.Git = strings.TrimSpace(src.Git)
		src.Ref = strings.TrimSpace(src.Ref)
		src.Commit = strings.TrimSpace(src.Commit)
		sources = append(sources, src)
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Name < sources[j].Name
	})
	l.Sources = sources
}

func (l *Lockfile) toDisk() lockfileDisk {
	out := make([]lockfileSource, 0, len(l.Sources))
	for _, src := range l.Sources {
		out = append(out, lockfileSource{
			Name:   src.Name,
			Git:    src.Git,
			Ref:    src.Ref,
			Commit: src.Commit,
		})
	}
	return lockfileDisk{
		Project:   l.Project,
		Generated: l.Generated,
		Tool:      l.Tool,
		Sources:   out,
	}
}

type lockfileDisk struct {
	Project   string           `yaml:"project"`
	Generated string           `yaml:"generated"`
	Tool      string           `yaml:"tool"`
	Sources   []lockfileSource `yaml:"sources"`
}

type lockfileSource struct {
	Name   string `yaml:"name"`
	Git    string `yaml:"git"`
	Ref    string `yaml:"ref"`
	Commit string `yaml:"commit"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Project:   d.Project,
		Generated: strings.TrimSpace(d.Generated),
		Tool:      d.Tool,
		Sources:   make([]*LockedSource, 0, len(d.Sources)),
	}
	for _, src := range d.Sources {
		lock.Sources = append(lock.Sources, &LockedSource{
			Name:   src.Name,
			Git:    src.Git,
			Ref:    src.Ref,
			Commit: src.Commit,
		})
	}
	lock.normalize()
	return lock
}
