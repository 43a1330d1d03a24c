// Package loader abstracts how module source text is fetched, so the
// compiler core never touches the filesystem directly. Native resolves
// import paths relative to a base directory via afs; Stub serves an
// in-memory map for tests.
package loader

import (
	"context"
	"fmt"
	"path"

	"github.com/viant/afs"
)

// FileLoader resolves an import path (relative to basePath) to source text.
type FileLoader interface {
	Load(ctx context.Context, importPath, basePath string) (string, error)
}

// Native reads module source from the filesystem (or any afs-supported
// scheme) through github.com/viant/afs.
type Native struct {
	fs afs.Service
}

// NewNative returns a Native loader backed by a fresh afs service.
func NewNative() *Native {
	return &Native{fs: afs.New()}
}

// Load joins importPath onto basePath and downloads the resulting location.
func (n *Native) Load(ctx context.Context, importPath, basePath string) (string, error) {
	location := path.Join(basePath, importPath)
	source, err := n.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return "", fmt.Errorf("failed to load module %q: %w", location, err)
	}
	return string(source), nil
}

// Stub serves module source from an in-memory map keyed by the raw import
// path; the base path is ignored, since there is no filesystem to resolve
// against. It is used by pipeline tests that have no filesystem fixtures.
type Stub struct {
	Files map[string]string
}

// NewStub wraps a ready-made path-to-source map.
func NewStub(files map[string]string) *Stub {
	return &Stub{Files: files}
}

// Load looks up importPath in the in-memory map.
func (s *Stub) Load(_ context.Context, importPath, _ string) (string, error) {
	source, ok := s.Files[importPath]
	if !ok {
		return "", fmt.Errorf("failed to load module %q: not found", importPath)
	}
	return source, nil
}
