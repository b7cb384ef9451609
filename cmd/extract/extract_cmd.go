package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/LegacyCodeHQ/hdrmirror/headers"
	"github.com/LegacyCodeHQ/hdrmirror/internal/config"
	"github.com/LegacyCodeHQ/hdrmirror/internal/mcplogdlog"
	"github.com/spf13/cobra"
)

const (
	graphFormatDOT     = "dot"
	graphFormatMermaid = "mermaid"
)

// Options holds the flags shared by extract and watch.
type Options struct {
	ConfigPath  string
	SearchDirs  []string
	Excludes    []string
	OutDir      string
	GraphFormat string
	Quiet       bool
}

// Summary describes one finished extraction.
type Summary struct {
	Visited    int
	Copied     []headers.CopiedHeader
	Unresolved []headers.UnresolvedInclude
}

// NewCommand returns a new extract command instance.
func NewCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "extract <source-tree-root> <file>",
		Short: "Copy the headers a source file includes out of a source tree",
		Long: `Resolve the #include directives of a C/C++ file against the search
directories of a large source tree (e.g. an AOSP checkout), copy every header
found into the output directory under its path relative to the tree root,
and repeat for the includes of each copied header.

Includes that cannot be found are reported and skipped. A file that cannot
be opened stops the run.

Examples:
  cd jni/include && hdrmirror extract ~/aosp ../dexposed.cpp
  hdrmirror extract ~/aosp main.cpp -s art/runtime -s bionic/libc/include
  hdrmirror extract ~/aosp main.cpp -o include -g dot`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := Run(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], opts)
			if err != nil {
				return err
			}
			if !opts.Quiet {
				printSummary(cmd.ErrOrStderr(), summary, opts.OutDir)
			}
			return nil
		},
	}

	AddFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.GraphFormat, "graph", "g", "", fmt.Sprintf("Print the include graph (%s, %s)", graphFormatDOT, graphFormatMermaid))
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Do not print the summary")

	return cmd
}

// AddFlags registers the search and output flags on cmd.
func AddFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "C", "", fmt.Sprintf("Config file (default: %s in the output directory)", config.FileName))
	cmd.Flags().StringSliceVarP(&opts.SearchDirs, "search-dir", "s", nil, "Search directory relative to the source tree root, in priority order (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Excludes, "exclude", nil, "Skip paths matching these globs, relative to the source tree root (repeatable)")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", ".", "Root of the mirrored header tree")
}

// Run resolves file against the source tree at baseDir and copies the headers
// it reaches into opts.OutDir. Unresolved includes are reported to out, or to
// errOut when an include graph is printed to out.
func Run(out, errOut io.Writer, baseDir, file string, opts *Options) (*Summary, error) {
	if opts.GraphFormat != "" && opts.GraphFormat != graphFormatDOT && opts.GraphFormat != graphFormatMermaid {
		return nil, fmt.Errorf("unknown graph format: %s (valid options: %s, %s)", opts.GraphFormat, graphFormatDOT, graphFormatMermaid)
	}

	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access source tree root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source tree root is not a directory: %s", baseDir)
	}

	cfg, err := config.Resolve(opts.SearchDirs, opts.Excludes, opts.ConfigPath, opts.OutDir)
	if err != nil {
		return nil, err
	}

	roots, err := headers.NewSearchRootSet(baseDir, cfg.SearchDirs, headers.WithExcludes(cfg.Exclude...))
	if err != nil {
		return nil, err
	}
	for _, root := range roots.Roots() {
		if _, err := os.Stat(root); err != nil {
			fmt.Fprintf(errOut, "Warning: search directory %s is not accessible\n", root)
		}
	}

	// The graph owns stdout when requested, so diagnostics move to errOut.
	diagnostics := out
	if opts.GraphFormat != "" {
		diagnostics = errOut
	}

	var includeGraph *headers.IncludeGraph
	resolverOpts := []headers.ResolverOption{
		headers.WithOutputDir(opts.OutDir),
		headers.WithDiagnostics(diagnostics),
	}
	if opts.GraphFormat != "" {
		includeGraph = headers.NewIncludeGraph()
		resolverOpts = append(resolverOpts, headers.WithIncludeGraph(includeGraph))
	}

	resolver := headers.NewResolver(roots, resolverOpts...)
	mcplogdlog.Info("extract started", map[string]any{"file": file, "root": roots.BaseDir(), "out": opts.OutDir})

	visited, err := resolver.Resolve(file, nil)
	if err != nil {
		mcplogdlog.Error("extract aborted", map[string]any{"file": file, "error": err.Error()})
		return nil, err
	}

	result := resolver.Result()
	summary := &Summary{
		Visited:    visited.Len(),
		Copied:     result.Copied,
		Unresolved: result.Unresolved,
	}

	if includeGraph != nil {
		output, err := formatGraph(includeGraph, opts.GraphFormat, filepath.Base(file))
		if err != nil {
			return summary, fmt.Errorf("failed to format include graph: %w", err)
		}
		fmt.Fprint(out, output)
	}

	return summary, nil
}

func formatGraph(g *headers.IncludeGraph, format, label string) (string, error) {
	if format == graphFormatMermaid {
		return g.FormatMermaid(label)
	}
	return g.FormatDOT(label)
}

func printSummary(w io.Writer, summary *Summary, outDir string) {
	noun := "headers"
	if len(summary.Copied) == 1 {
		noun = "header"
	}
	fmt.Fprintf(w, "Copied %d %s into %s (%d not found)\n", len(summary.Copied), noun, outDir, len(summary.Unresolved))
}
