package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot string
	StateDir    string
	DatabaseDir string
	DBPath      string
	OutputRoot  string
}

// ResolvePaths anchors every configured path. An explicit root wins over
// paths.project_root; otherwise the root is detected from cwd.
func ResolvePaths(cfg *Config, cwd, explicitRoot string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	var projectRoot string
	switch {
	case strings.TrimSpace(explicitRoot) != "":
		projectRoot = ResolveRelative(cwd, explicitRoot)
	case strings.TrimSpace(cfg.Paths.ProjectRoot) != "":
		projectRoot = ResolveRelative(cwd, cfg.Paths.ProjectRoot)
	default:
		root, err := DetectProjectRoot([]string{cwd})
		if err != nil {
			return ResolvedPaths{}, err
		}
		projectRoot = root
	}

	stateDir := ResolveRelative(projectRoot, cfg.Paths.StateDir)
	databaseDir := ResolveRelative(projectRoot, cfg.Paths.DatabaseDir)

	outputRoot := strings.TrimSpace(cfg.Output.Paths.Root)
	if outputRoot == "" {
		outputRoot = projectRoot
	} else {
		outputRoot = ResolveRelative(projectRoot, outputRoot)
	}

	return ResolvedPaths{
		ProjectRoot: filepath.Clean(projectRoot),
		StateDir:    stateDir,
		DatabaseDir: databaseDir,
		DBPath:      ResolveRelative(databaseDir, cfg.DB.Path),
		OutputRoot:  filepath.Clean(outputRoot),
	}, nil
}

// OutputPath resolves an output target against the output root.
func (p ResolvedPaths) OutputPath(target string) string {
	if strings.TrimSpace(target) == "" {
		return ""
	}
	return ResolveRelative(p.OutputRoot, target)
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DetectProjectRoot walks up from each candidate looking for a Ruby project
// marker and falls back to the working directory.
func DetectProjectRoot(candidates []string) (string, error) {
	markers := []string{
		DefaultFile,
		"Gemfile",
		".git",
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range markers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}
