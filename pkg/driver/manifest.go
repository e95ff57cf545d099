// Package driver loads RPAL projects: the rpal.yml manifest, the rpal.lock
// lockfile, and program sources from the project tree or git repositories.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	ManifestName = "rpal.yml"
	LockfileName = "rpal.lock"
)

// Manifest represents the parsed contents of rpal.yml.
type Manifest struct {
	Path        string
	Name        string
	Version     string
	Settings    Settings
	Targets     map[string]*Target
	TargetOrder []string
	Sources     map[string]*SourceSpec
}

// Settings are evaluation defaults applied to every target.
type Settings struct {
	MaxSteps int
	Trace    bool
	Marker   string
}

// Target names a program to run. Source is empty for files in the project
// tree, otherwise it names an entry of Manifest.Sources.
type Target struct {
	Name   string
	Main   string
	Source string
}

// SourceSpec describes a git repository holding RPAL programs. Git is a URL
// or a path to a local repository, relative to the manifest.
type SourceSpec struct {
	Name   string
	Git    string
	Rev    string
	Tag    string
	Branch string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

var ErrNoTargets = errors.New("manifest: no targets defined")

// LoadManifest parses rpal.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks up from start looking for rpal.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", start, err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("manifest: no %s found from %s", ManifestName, start)
		}
		dir = parent
	}
}

// Dir is the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// LockfilePath is the rpal.lock next to the manifest.
func (m *Manifest) LockfilePath() string {
	return filepath.Join(m.Dir(), LockfileName)
}

// DefaultTarget returns the first target in manifest order.
func (m *Manifest) DefaultTarget() (*Target, error) {
	if m == nil || len(m.TargetOrder) == 0 {
		return nil, ErrNoTargets
	}
	return m.Targets[m.TargetOrder[0]], nil
}

// FindTarget looks up a target by name; dashes and underscores are interchangeable.
func (m *Manifest) FindTarget(name string) (*Target, bool) {
	if m == nil {
		return nil, false
	}
	target, ok := m.Targets[sanitizeSegment(name)]
	return target, ok && target != nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Settings.MaxSteps < 0 {
		errs.Issues = append(errs.Issues, "settings.max_steps must not be negative")
	}
	if m.Settings.Marker == "" {
		errs.Issues = append(errs.Issues, "settings.marker must not be empty")
	}
	for _, name := range m.TargetOrder {
		target := m.Targets[name]
		if strings.TrimSpace(target.Main) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main program", name))
		}
		if target.Source != "" {
			if _, ok := m.Sources[target.Source]; !ok {
				errs.Issues = append(errs.Issues, fmt.Sprintf("target %q uses undefined source %q", name, target.Source))
			}
		}
	}
	sourceNames := lo.Keys(m.Sources)
	sort.Strings(sourceNames)
	for _, name := range sourceNames {
		for _, issue := range m.Sources[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("sources.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (s *SourceSpec) validate() []string {
	var errs []string
	if s.Git == "" {
		errs = append(errs, "git must be provided")
	}
	refs := 0
	for _, ref := range []string{s.Rev, s.Tag, s.Branch} {
		if ref != "" {
			refs++
		}
	}
	if refs > 1 {
		errs = append(errs, "specify only one of rev, tag or branch")
	}
	return errs
}

type manifestFile struct {
	Name     string                 `yaml:"name"`
	Version  string                 `yaml:"version"`
	Settings settingsYAML           `yaml:"settings"`
	Targets  targetMap              `yaml:"targets"`
	Sources  map[string]*sourceYAML `yaml:"sources"`
}

type settingsYAML struct {
	MaxSteps int     `yaml:"max_steps"`
	Trace    bool    `yaml:"trace"`
	Marker   *string `yaml:"marker"`
}

type targetYAML struct {
	Main   string `yaml:"main"`
	Source string `yaml:"source"`
}

type sourceYAML struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
}

// targetMap keeps targets in document order so the first one can be the default.
type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	spec *targetYAML
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		entry := new(targetYAML)
		valueNode := value.Content[i+1]
		if valueNode.Kind == yaml.ScalarNode {
			// shorthand: `name: path/to/main.rpal`
			if err := valueNode.Decode(&entry.Main); err != nil {
				return fmt.Errorf("manifest: target %q: %w", key, err)
			}
		} else if err := valueNode.Decode(entry); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, spec: entry})
	}
	tm.items = items
	return nil
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:    path,
		Name:    sanitizeSegment(mf.Name),
		Version: strings.TrimSpace(mf.Version),
		Settings: Settings{
			MaxSteps: mf.Settings.MaxSteps,
			Trace:    mf.Settings.Trace,
			Marker:   ".",
		},
		Targets:     make(map[string]*Target, len(mf.Targets.items)),
		TargetOrder: make([]string, 0, len(mf.Targets.items)),
		Sources:     make(map[string]*SourceSpec, len(mf.Sources)),
	}
	if mf.Settings.Marker != nil {
		result.Settings.Marker = *mf.Settings.Marker
	}
	for _, entry := range mf.Targets.items {
		name := sanitizeSegment(entry.name)
		if _, dup := result.Targets[name]; !dup {
			result.TargetOrder = append(result.TargetOrder, name)
		}
		result.Targets[name] = &Target{
			Name:   name,
			Main:   strings.TrimSpace(entry.spec.Main),
			Source: sanitizeSegment(entry.spec.Source),
		}
	}
	for name, src := range mf.Sources {
		if src == nil {
			src = &sourceYAML{}
		}
		key := sanitizeSegment(name)
		result.Sources[key] = &SourceSpec{
			Name:   key,
			Git:    strings.TrimSpace(src.Git),
			Rev:    strings.TrimSpace(src.Rev),
			Tag:    strings.TrimSpace(src.Tag),
			Branch: strings.TrimSpace(src.Branch),
		}
	}
	return result
}

func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}
