package app

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"rbgraph/internal/shared/util"
)

// DiscoverFiles lists the Ruby sources under every scan root, sorted.
func (a *App) DiscoverFiles() ([]string, error) {
	roots := make([]string, 0, len(a.Config.Scan.Roots))
	for _, root := range a.Config.Scan.Roots {
		roots = append(roots, filepath.Join(a.Paths.ProjectRoot, filepath.FromSlash(root)))
	}
	return a.ScanDirectories(roots, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
}

// ScanDirectories walks paths and keeps supported, non-excluded files.
// Exclusion globs are matched against the base name and against the
// slash-separated path relative to the project root.
func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	dirGlobs, err := compileGlobs(excludeDirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(excludeFiles, "exclude file")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string
	for _, root := range paths {
		if !dirExists(root) {
			slog.Debug("skipping missing scan root", "path", root)
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && a.matchesAny(dirGlobs, path) {
					return filepath.SkipDir
				}
				return nil
			}

			if !a.codeParser.IsSupportedPath(path) {
				return nil
			}
			if !a.IncludeTests && a.codeParser.IsTestFile(path) {
				return nil
			}
			if a.matchesAny(fileGlobs, path) {
				return nil
			}

			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (a *App) matchesAny(globs []glob.Glob, path string) bool {
	base := filepath.Base(path)
	rel := util.RelativeSlash(a.Paths.ProjectRoot, path)
	for _, g := range globs {
		if g.Match(base) || g.Match(rel) {
			return true
		}
	}
	return false
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
