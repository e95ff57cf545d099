package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/samber/lo"
)

// SourceFile is a program loaded for a target.
type SourceFile struct {
	Target string
	// Path is the file path on disk, or source:path for git sources.
	Path   string
	Text   string
	Commit string
}

// Loader reads target programs from the project tree or from git sources.
type Loader struct {
	Manifest *Manifest
	CacheDir string
	Lock     *Lockfile
}

// NewLoader returns a loader for manifest. Remote git sources are cached under
// cacheDir. A nil lock resolves every source afresh.
func NewLoader(manifest *Manifest, cacheDir string, lock *Lockfile) *Loader {
	return &Loader{Manifest: manifest, CacheDir: cacheDir, Lock: lock}
}

// Load reads the main program of target.
func (l *Loader) Load(ctx context.Context, target *Target) (*SourceFile, error) {
	if target == nil {
		return nil, fmt.Errorf("loader: nil target")
	}
	if target.Source == "" {
		file := filepath.Join(l.Manifest.Dir(), filepath.FromSlash(target.Main))
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("loader: target %s: %w", target.Name, err)
		}
		return &SourceFile{Target: target.Name, Path: file, Text: string(data)}, nil
	}

	spec, ok := l.Manifest.Sources[target.Source]
	if !ok {
		return nil, fmt.Errorf("loader: target %s uses undefined source %q", target.Name, target.Source)
	}
	repo, err := l.openRepository(ctx, spec)
	if err != nil {
		return nil, err
	}
	pin, err := l.pin(repo, spec)
	if err != nil {
		return nil, err
	}
	rel, err := repoPath(target.Main)
	if err != nil {
		return nil, fmt.Errorf("loader: target %s: %w", target.Name, err)
	}
	commit, err := repo.CommitObject(plumbing.NewHash(pin.Commit))
	if err != nil {
		return nil, fmt.Errorf("loader: source %s: commit %s: %w", spec.Name, pin.Commit, err)
	}
	file, err := commit.File(rel)
	if err != nil {
		return nil, fmt.Errorf("loader: source %s: %s at %s: %w", spec.Name, rel, shortHash(pin.Commit), err)
	}
	text, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("loader: source %s: read %s: %w", spec.Name, rel, err)
	}
	return &SourceFile{
		Target: target.Name,
		Path:   spec.Name + ":" + rel,
		Text:   text,
		Commit: pin.Commit,
	}, nil
}

// Resolve pins spec to a commit, ignoring any existing lock entry.
func (l *Loader) Resolve(ctx context.Context, spec *SourceSpec) (*LockedSource, error) {
	repo, err := l.openRepository(ctx, spec)
	if err != nil {
		return nil, err
	}
	return resolvePin(repo, spec)
}

// LockAll resolves every manifest source and returns a fresh lockfile.
func (l *Loader) LockAll(ctx context.Context, tool string) (*Lockfile, error) {
	lock := NewLockfile(l.Manifest.Name, tool)
	lock.Path = l.Manifest.LockfilePath()
	names := lo.Keys(l.Manifest.Sources)
	sort.Strings(names)
	for _, name := range names {
		pin, err := l.Resolve(ctx, l.Manifest.Sources[name])
		if err != nil {
			return nil, err
		}
		lock.Put(pin)
	}
	lock.normalize()
	return lock, nil
}

func (l *Loader) pin(repo *git.Repository, spec *SourceSpec) (*LockedSource, error) {
	if locked, ok := l.Lock.Find(spec.Name); ok && locked.Git == spec.Git && locked.Ref == refDescriptor(spec) && locked.Commit != "" {
		return locked, nil
	}
	return resolvePin(repo, spec)
}

func resolvePin(repo *git.Repository, spec *SourceSpec) (*LockedSource, error) {
	revision := gitRevisionFromSpec(spec)
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return nil, fmt.Errorf("loader: source %s: resolve revision %s: %w", spec.Name, revision, err)
	}
	return &LockedSource{
		Name:   spec.Name,
		Git:    spec.Git,
		Ref:    refDescriptor(spec),
		Commit: hash.String(),
	}, nil
}

// openRepository opens a local repository in place, or fetches a remote one
// into the cache.
func (l *Loader) openRepository(ctx context.Context, spec *SourceSpec) (*git.Repository, error) {
	if local, ok := l.localRepository(spec.Git); ok {
		repo, err := git.PlainOpen(local)
		if err != nil {
			return nil, fmt.Errorf("loader: source %s: open %s: %w", spec.Name, local, err)
		}
		return repo, nil
	}

	if l.CacheDir == "" {
		return nil, fmt.Errorf("loader: source %s: no cache directory for %s", spec.Name, spec.Git)
	}
	dir := filepath.Join(l.CacheDir, "git", sanitizePathSegment(spec.Name))
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, true)
		if err == nil {
			_, err = repo.CreateRemote(&config.RemoteConfig{Name: git.DefaultRemoteName, URLs: []string{spec.Git}})
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loader: source %s: cache %s: %w", spec.Name, dir, err)
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs: []config.RefSpec{
			"+refs/heads/*:refs/heads/*",
			"+refs/tags/*:refs/tags/*",
		},
		Force: true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("loader: source %s: fetch %s: %w", spec.Name, spec.Git, err)
	}
	if err := syncRemoteHead(ctx, repo); err != nil {
		return nil, fmt.Errorf("loader: source %s: %w", spec.Name, err)
	}
	return repo, nil
}

// syncRemoteHead points the cached repository's HEAD at the remote default branch.
func syncRemoteHead(ctx context.Context, repo *git.Repository) error {
	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return err
	}
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return fmt.Errorf("list remote refs: %w", err)
	}
	for _, ref := range refs {
		if ref.Name() == plumbing.HEAD && ref.Type() == plumbing.SymbolicReference {
			return repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, ref.Target()))
		}
	}
	return nil
}

// localRepository reports whether git names a directory, resolved against the
// manifest directory when relative.
func (l *Loader) localRepository(location string) (string, bool) {
	location = strings.TrimPrefix(location, "file://")
	if strings.Contains(location, "://") || strings.HasPrefix(location, "git@") {
		return "", false
	}
	if !filepath.IsAbs(location) {
		location = filepath.Join(l.Manifest.Dir(), filepath.FromSlash(location))
	}
	info, err := os.Stat(location)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return location, true
}

func gitRevisionFromSpec(spec *SourceSpec) plumbing.Revision {
	if spec.Rev != "" {
		return plumbing.Revision(spec.Rev)
	}
	if spec.Tag != "" {
		return plumbing.Revision("refs/tags/" + spec.Tag)
	}
	if spec.Branch != "" {
		return plumbing.Revision("refs/heads/" + spec.Branch)
	}
	return plumbing.Revision(plumbing.HEAD)
}

func refDescriptor(spec *SourceSpec) string {
	switch {
	case spec.Rev != "":
		return spec.Rev
	case spec.Tag != "":
		return "tag:" + spec.Tag
	case spec.Branch != "":
		return "branch:" + spec.Branch
	default:
		return "HEAD"
	}
}

func repoPath(main string) (string, error) {
	cleaned := path.Clean(filepath.ToSlash(strings.TrimSpace(main)))
	if cleaned == "." || strings.HasPrefix(cleaned, "/") || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("main %q must be a path inside the repository", main)
	}
	return cleaned, nil
}

func shortHash(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, segment)
}
