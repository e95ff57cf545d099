package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, contents)
	return path
}

// commitFiles writes files into the repository at dir and commits them,
// returning the commit hash.
func commitFiles(t *testing.T, repo *git.Repository, dir string, files map[string]string) string {
	t.Helper()
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	for name, contents := range files {
		writeFile(t, filepath.Join(dir, name), contents)
		if _, err := worktree.Add(name); err != nil {
			t.Fatalf("Add %s: %v", name, err)
		}
	}
	hash, err := worktree.Commit("update", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "RPAL",
			Email: "rpal@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func TestLoadManifestParsesTargetsInOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
name: course-work
version: 0.1.0
settings:
  max_steps: 5000
  trace: true
targets:
  fact: programs/fact.rpal
  my-tuple:
    main: programs/tuple.rpal
  remote:
    main: lib/sum.rpal
    source: shared
sources:
  shared:
    git: ../shared
    tag: v1
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if manifest.Name != "course_work" || manifest.Version != "0.1.0" {
		t.Fatalf("unexpected header %q %q", manifest.Name, manifest.Version)
	}
	if manifest.Settings.MaxSteps != 5000 || !manifest.Settings.Trace || manifest.Settings.Marker != "." {
		t.Fatalf("unexpected settings %#v", manifest.Settings)
	}
	if got := strings.Join(manifest.TargetOrder, ","); got != "fact,my_tuple,remote" {
		t.Fatalf("unexpected target order %s", got)
	}
	def, err := manifest.DefaultTarget()
	if err != nil || def.Main != "programs/fact.rpal" {
		t.Fatalf("unexpected default target %#v (%v)", def, err)
	}
	target, ok := manifest.FindTarget("my-tuple")
	if !ok || target.Main != "programs/tuple.rpal" {
		t.Fatalf("FindTarget(my-tuple) = %#v, %v", target, ok)
	}
	if src := manifest.Sources["shared"]; src == nil || src.Tag != "v1" || src.Git != "../shared" {
		t.Fatalf("unexpected source %#v", manifest.Sources["shared"])
	}
	if manifest.LockfilePath() != filepath.Join(dir, LockfileName) {
		t.Fatalf("unexpected lockfile path %s", manifest.LockfilePath())
	}
}

func TestLoadManifestValidation(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
settings:
  max_steps: -1
  marker: ""
targets:
  broken:
    source: missing
sources:
  pinned:
    git: https://example.com/repo.git
    rev: abc
    branch: main
`)
	_, err := LoadManifest(path)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, want := range []string{
		"name must be provided",
		"settings.max_steps must not be negative",
		"settings.marker must not be empty",
		`target "broken" requires a main program`,
		`target "broken" uses undefined source "missing"`,
		"sources.pinned: specify only one of rev, tag or branch",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in:\n%s", want, err)
		}
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
name: demo
steps: 10
`)
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestDefaultTargetWithoutTargets(t *testing.T) {
	dir := t.TempDir()
	manifest, err := LoadManifest(writeManifest(t, dir, "name: empty"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if _, err := manifest.DefaultTarget(); !errors.Is(err, ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "name: demo")
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if found != path {
		t.Fatalf("found %s, want %s", found, path)
	}
}

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lock := NewLockfile("demo-app", "rpal test")
	lock.Put(&LockedSource{Name: "zeta", Git: "https://example.com/z.git", Ref: "HEAD", Commit: "bbb"})
	lock.Put(&LockedSource{Name: "alpha", Git: "../alpha", Ref: "tag:v1", Commit: "aaa"})
	lock.Put(&LockedSource{Name: "alpha", Git: "../alpha", Ref: "tag:v2", Commit: "ccc"})

	path := filepath.Join(dir, LockfileName)
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}
	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Project != "demo_app" || loaded.Tool != "rpal test" || loaded.Generated == "" {
		t.Fatalf("unexpected metadata %#v", loaded)
	}
	if len(loaded.Sources) != 2 || loaded.Sources[0].Name != "alpha" || loaded.Sources[1].Name != "zeta" {
		t.Fatalf("unexpected sources %#v", loaded.Sources)
	}
	alpha, ok := loaded.Find("alpha")
	if !ok || alpha.Commit != "ccc" || alpha.Ref != "tag:v2" {
		t.Fatalf("unexpected alpha pin %#v", alpha)
	}
	if _, ok := loaded.Find("missing"); ok {
		t.Fatalf("expected missing source to be absent")
	}
}

func TestLoaderReadsLocalTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "programs", "fact.rpal"), "let rec f n = n eq 0 -> 1 | n * f (n - 1) in Print (f 5)")
	manifest, err := LoadManifest(writeManifest(t, dir, `
name: demo
targets:
  fact: programs/fact.rpal
`))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	target, _ := manifest.DefaultTarget()
	file, err := NewLoader(manifest, "", nil).Load(context.Background(), target)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.HasPrefix(file.Text, "let rec f n") || file.Commit != "" {
		t.Fatalf("unexpected file %#v", file)
	}
	if file.Path != filepath.Join(dir, "programs", "fact.rpal") {
		t.Fatalf("unexpected path %s", file.Path)
	}
}

func TestLoaderReadsGitSourceAndHonoursLock(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "shared")
	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	first := commitFiles(t, repo, repoDir, map[string]string{"lib/answer.rpal": "1 + 1"})
	if _, err := repo.CreateTag("v1", plumbing.NewHash(first), nil); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	second := commitFiles(t, repo, repoDir, map[string]string{"lib/answer.rpal": "2 + 2"})

	projectDir := filepath.Join(root, "project")
	manifest, err := LoadManifest(writeManifest(t, projectDir, `
name: demo
targets:
  answer:
    main: lib/answer.rpal
    source: shared
  tagged:
    main: lib/answer.rpal
    source: release
sources:
  shared:
    git: ../shared
  release:
    git: ../shared
    tag: v1
`))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	ctx := context.Background()
	loader := NewLoader(manifest, t.TempDir(), nil)

	answer, _ := manifest.FindTarget("answer")
	file, err := loader.Load(ctx, answer)
	if err != nil {
		t.Fatalf("Load answer: %v", err)
	}
	if file.Text != "2 + 2\n" || file.Commit != second || file.Path != "shared:lib/answer.rpal" {
		t.Fatalf("unexpected head file %#v", file)
	}

	tagged, _ := manifest.FindTarget("tagged")
	file, err = loader.Load(ctx, tagged)
	if err != nil {
		t.Fatalf("Load tagged: %v", err)
	}
	if file.Text != "1 + 1\n" || file.Commit != first {
		t.Fatalf("unexpected tagged file %#v", file)
	}

	lock, err := loader.LockAll(ctx, "rpal test")
	if err != nil {
		t.Fatalf("LockAll: %v", err)
	}
	if len(lock.Sources) != 2 || lock.Sources[0].Name != "release" || lock.Sources[1].Commit != second {
		t.Fatalf("unexpected lock %#v", lock.Sources)
	}

	// A pin keeps resolving to its commit after the branch moves on.
	lock.Put(&LockedSource{Name: "shared", Git: "../shared", Ref: "HEAD", Commit: first})
	file, err = NewLoader(manifest, "", lock).Load(ctx, answer)
	if err != nil {
		t.Fatalf("Load pinned: %v", err)
	}
	if file.Text != "1 + 1\n" || file.Commit != first {
		t.Fatalf("expected pinned commit, got %#v", file)
	}

	missing := &Target{Name: "gone", Main: "lib/missing.rpal", Source: "shared"}
	if _, err := loader.Load(ctx, missing); err == nil {
		t.Fatalf("expected missing file error")
	}
	escape := &Target{Name: "escape", Main: "../outside.rpal", Source: "shared"}
	if _, err := loader.Load(ctx, escape); err == nil {
		t.Fatalf("expected path escape to be rejected")
	}
}

func TestGitRevisionFromSpec(t *testing.T) {
	cases := []struct {
		spec SourceSpec
		rev  string
		ref  string
	}{
		{SourceSpec{Rev: "abc123"}, "abc123", "abc123"},
		{SourceSpec{Tag: "v1"}, "refs/tags/v1", "tag:v1"},
		{SourceSpec{Branch: "main"}, "refs/heads/main", "branch:main"},
		{SourceSpec{}, "HEAD", "HEAD"},
	}
	for _, tc := range cases {
		if got := string(gitRevisionFromSpec(&tc.spec)); got != tc.rev {
			t.Fatalf("revision for %#v = %s, want %s", tc.spec, got, tc.rev)
		}
		if got := refDescriptor(&tc.spec); got != tc.ref {
			t.Fatalf("descriptor for %#v = %s, want %s", tc.spec, got, tc.ref)
		}
	}
}
