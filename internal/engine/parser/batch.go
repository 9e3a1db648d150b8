package parser

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ReadFunc loads file content; os.ReadFile in production.
type ReadFunc func(path string) ([]byte, error)

type FileError struct {
	Path string
	Err  error
}

// BatchResult keeps successfully parsed files in input order.
type BatchResult struct {
	Files  []*SourceFile
	Failed []FileError
}

// ParseAll parses paths concurrently with at most workers goroutines.
// Per-file read or parse failures are logged and skipped; only context
// cancellation aborts the batch.
func (p *Parser) ParseAll(ctx context.Context, paths []string, workers int, read ReadFunc) (BatchResult, error) {
	if read == nil {
		read = os.ReadFile
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	files := make([]*SourceFile, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := read(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			files[i], errs[i] = p.ParseFile(path, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	var out BatchResult
	for i, path := range paths {
		if errs[i] != nil {
			slog.Warn("skipping file", "path", path, "error", errs[i])
			out.Failed = append(out.Failed, FileError{Path: path, Err: errs[i]})
			continue
		}
		out.Files = append(out.Files, files[i])
	}
	return out, nil
}
