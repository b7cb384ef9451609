package headers

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/hdrmirror/internal/mcplogdlog"
)

// ContentReader reads the bytes of a file. The resolver reads every file it
// scans through one, so tests can count or fail reads.
type ContentReader func(filePath string) ([]byte, error)

// FilesystemContentReader reads files from disk.
func FilesystemContentReader(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}

// FatalOpenError reports a file the resolver committed to processing but
// could not open. It aborts the whole run.
type FatalOpenError struct {
	Path string
	Err  error
}

func (e *FatalOpenError) Error() string {
	return fmt.Sprintf("open file %s error: %v", e.Path, e.Err)
}

func (e *FatalOpenError) Unwrap() error {
	return e.Err
}

// CopiedHeader is a header copied from the source tree into the output tree.
type CopiedHeader struct {
	Source      string
	Destination string
}

// UnresolvedInclude is an include reference no search root could satisfy.
type UnresolvedInclude struct {
	File      string
	Reference IncludeReference
}

// Result summarizes what a resolver did across its Resolve calls.
type Result struct {
	Copied     []CopiedHeader
	Unresolved []UnresolvedInclude
}

// Resolver copies the transitive local includes of a file out of a source tree.
type Resolver struct {
	roots         *SearchRootSet
	outDir        string
	diagnostics   io.Writer
	contentReader ContentReader
	graph         *IncludeGraph
	result        Result
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithOutputDir sets the root of the mirrored tree. Defaults to ".".
func WithOutputDir(dir string) ResolverOption {
	return func(r *Resolver) {
		r.outDir = dir
	}
}

// WithDiagnostics sets where "not found" lines are written. Defaults to io.Discard.
func WithDiagnostics(w io.Writer) ResolverOption {
	return func(r *Resolver) {
		r.diagnostics = w
	}
}

func WithContentReader(reader ContentReader) ResolverOption {
	return func(r *Resolver) {
		r.contentReader = reader
	}
}

// WithIncludeGraph records every resolved include edge into g.
func WithIncludeGraph(g *IncludeGraph) ResolverOption {
	return func(r *Resolver) {
		r.graph = g
	}
}

// NewResolver creates a resolver looking headers up in roots.
func NewResolver(roots *SearchRootSet, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		roots:         roots,
		outDir:        ".",
		diagnostics:   io.Discard,
		contentReader: FilesystemContentReader,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result returns the copies and unresolved references seen so far.
func (r *Resolver) Result() Result {
	return r.result
}

// Resolve scans filePath for includes, copies every header it can find in the
// search roots into the output tree and recurses into each copied header.
// visited may be nil at the top-level call. The returned set contains every
// file processed so far; a path in it is never copied or scanned again.
func (r *Resolver) Resolve(filePath string, visited VisitedSet) (VisitedSet, error) {
	if visited == nil {
		visited = NewVisitedSet()
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return visited, fmt.Errorf("failed to resolve path %s: %w", filePath, err)
	}
	visited.Add(absPath)

	content, err := r.contentReader(absPath)
	if err != nil {
		return visited, &FatalOpenError{Path: filePath, Err: err}
	}

	refs, err := ScanIncludes(bytes.NewReader(content))
	if err != nil {
		return visited, fmt.Errorf("failed to parse includes in %s: %w", filePath, err)
	}

	for _, ref := range refs {
		match, ok := r.roots.Find(ref.SearchPattern())
		if !ok {
			r.result.Unresolved = append(r.result.Unresolved, UnresolvedInclude{File: absPath, Reference: ref})
			mcplogdlog.Warn("include not found", map[string]any{"file": absPath, "include": ref.String()})
			fmt.Fprintf(r.diagnostics, "%s not found\n", ref)
			continue
		}

		if err := r.recordEdge(absPath, match); err != nil {
			return visited, err
		}

		if visited.Has(match) {
			mcplogdlog.Debug("skip visited header", map[string]any{"header": match})
			continue
		}

		dst := filepath.Join(r.outDir, MirrorPath(r.roots.BaseDir(), match))
		if err := CopyFile(match, dst); err != nil {
			return visited, err
		}
		r.result.Copied = append(r.result.Copied, CopiedHeader{Source: match, Destination: dst})
		mcplogdlog.Debug("copied header", map[string]any{"source": match, "destination": dst})

		visited, err = r.Resolve(match, visited)
		if err != nil {
			return visited, err
		}
	}

	return visited, nil
}

func (r *Resolver) recordEdge(from, to string) error {
	if r.graph == nil {
		return nil
	}
	if err := r.graph.AddInclude(r.nodeName(from), r.nodeName(to)); err != nil {
		return fmt.Errorf("failed to record include %s -> %s: %w", from, to, err)
	}
	return nil
}

// nodeName names a file by its mirrored path. Files outside the source tree,
// like the starting file, are named relative to the output directory.
func (r *Resolver) nodeName(absPath string) string {
	base := r.roots.BaseDir()
	if strings.HasPrefix(absPath, base+string(filepath.Separator)) {
		return filepath.ToSlash(MirrorPath(base, absPath))
	}

	if absOut, err := filepath.Abs(r.outDir); err == nil {
		if rel, err := filepath.Rel(absOut, absPath); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(absPath)
}
