// Package locate finds llama.cpp executables on the host system.
package locate

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const notFoundSuffix = " not found"

// A Locator searches a fixed set of locations for an executable
// matching one of its candidate basenames. Every field is plain data
// so tests can point it at a fake filesystem and PATH.
type Locator struct {
	// Display is the name reported in the not-found sentinel,
	// normally the primary candidate without the platform suffix.
	Display string

	// Names are the candidate basenames in preference order,
	// already carrying the platform executable suffix.
	Names []string

	// Roots are vendor package-manager install roots, walked
	// recursively up to MaxDepth.
	Roots []string

	// PathList is a PATH-style list of directories checked for an
	// exact candidate match.
	PathList string

	// BuildDirs are relative build-output directories checked last.
	BuildDirs []string

	MaxDepth int
}

// Default builds the production locator for the given candidate
// basenames. On Windows the winget package cache and the llama.cpp
// Program Files directories are searched first; on every platform PATH
// and the local build directories follow.
func Default(names ...string) Locator {
	l := Locator{
		Display:   names[0],
		PathList:  os.Getenv("PATH"),
		BuildDirs: []string{"build/bin", "./build/bin", "../build/bin"},
		MaxDepth:  4,
	}

	for _, name := range names {
		l.Names = append(l.Names, name+exeSuffix())
	}

	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			l.Roots = append(l.Roots, filepath.Join(dir, "Microsoft", "WinGet", "Packages"))
		}
		if dir := os.Getenv("PROGRAMFILES"); dir != "" {
			l.Roots = append(l.Roots, filepath.Join(dir, "llama.cpp"))
		}
		if dir := os.Getenv("PROGRAMFILES(X86)"); dir != "" {
			l.Roots = append(l.Roots, filepath.Join(dir, "llama.cpp"))
		}
	}

	return l
}

// Sentinel is the value reported when nothing was found. The user can
// overwrite it with a manual path.
func (l Locator) Sentinel() string {
	return l.Display + notFoundSuffix
}

// IsSentinel reports whether path is a locator not-found placeholder
// rather than a real path.
func IsSentinel(path string) bool {
	return strings.HasSuffix(path, notFoundSuffix)
}

// Find returns the first matching executable along the search order:
// vendor roots, then PATH, then build directories. On a miss it
// returns the sentinel, never an error.
func (l Locator) Find() string {
	for _, root := range l.Roots {
		if path := l.walkRoot(root); path != "" {
			return path
		}
	}

	for _, dir := range filepath.SplitList(l.PathList) {
		if dir == "" {
			continue
		}
		for _, name := range l.Names {
			path := filepath.Join(dir, name)
			if isExecutableFile(path) {
				return path
			}
		}
	}

	for _, dir := range l.BuildDirs {
		for _, name := range l.Names {
			path := filepath.Join(dir, name)
			if isExecutableFile(path) {
				if abs, err := filepath.Abs(path); err == nil {
					return abs
				}
				return path
			}
		}
	}

	return l.Sentinel()
}

// walkRoot scans one vendor root, pruning directories deeper than
// MaxDepth so a large package cache cannot stall startup.
func (l Locator) walkRoot(root string) string {
	if _, err := os.Stat(root); err != nil {
		return ""
	}

	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil && rel != "." && strings.Count(rel, string(filepath.Separator)) >= l.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		for _, name := range l.Names {
			if d.Name() == name && isExecutableFile(path) {
				found = path
				return fs.SkipAll
			}
		}
		return nil
	})

	return found
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
