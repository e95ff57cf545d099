package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/driver"
)

func runTarget(args []string) int {
	opts, rest, err := parseArgs(args)
	if err != nil {
		return reportArgError(err)
	}
	if len(rest) > 1 {
		printUsage()
		return 1
	}
	if len(rest) == 1 && strings.HasSuffix(rest[0], ".rpal") {
		if info, err := os.Stat(rest[0]); err == nil && !info.IsDir() {
			return runFile(args)
		}
	}

	manifest, lock, err := loadProject()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	var target *driver.Target
	if len(rest) == 0 {
		target, err = manifest.DefaultTarget()
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	} else {
		var ok bool
		target, ok = manifest.FindTarget(rest[0])
		if !ok {
			fmt.Fprintf(stderr, "error: unknown target %q in %s\n", rest[0], manifest.Path)
			return 1
		}
	}

	if err := applySettings(&opts, manifest.Settings); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	cacheDir, err := cacheRoot()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	loader := driver.NewLoader(manifest, cacheDir, lock)
	file, err := loader.Load(context.Background(), target)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := execute(file.Text, opts, manifest.Settings.Marker); err != nil {
		fmt.Fprintf(stderr, "error: %s: %v\n", file.Path, err)
		return 1
	}
	return 0
}

func runDeps(args []string) int {
	if len(args) > 0 {
		printUsage()
		return 1
	}
	manifest, _, err := loadProject()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	cacheDir, err := cacheRoot()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	lock, err := driver.NewLoader(manifest, cacheDir, nil).LockAll(context.Background(), cliToolVersion)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := driver.WriteLockfile(lock, manifest.LockfilePath()); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	for _, src := range lock.Sources {
		fmt.Fprintf(stdout, "%s %s %s\n", src.Name, src.Ref, src.Commit)
	}
	fmt.Fprintf(stdout, "wrote %s\n", manifest.LockfilePath())
	return 0
}

// loadProject finds rpal.yml from the working directory and reads the lockfile
// next to it when one exists.
func loadProject() (*driver.Manifest, *driver.Lockfile, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}
	path, err := driver.FindManifest(cwd)
	if err != nil {
		return nil, nil, err
	}
	manifest, err := driver.LoadManifest(path)
	if err != nil {
		return nil, nil, err
	}
	lock, err := driver.LoadLockfile(manifest.LockfilePath())
	if errors.Is(err, fs.ErrNotExist) {
		return manifest, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return manifest, lock, nil
}

// applySettings fills options not given on the command line. RPAL_MAX_STEPS
// wins over the manifest budget.
func applySettings(opts *cliOptions, settings driver.Settings) error {
	if settings.Trace {
		opts.trace = true
	}
	if opts.maxStepsSet {
		return nil
	}
	n, ok, err := maxStepsFromEnv()
	if err != nil {
		return err
	}
	if ok {
		opts.maxSteps = n
	} else {
		opts.maxSteps = settings.MaxSteps
	}
	opts.maxStepsSet = true
	return nil
}

func rpalHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("RPAL_HOME")); home != "" {
		return filepath.Abs(home)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(userHome, ".rpal"), nil
}

func cacheRoot() (string, error) {
	home, err := rpalHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "cache"), nil
}
