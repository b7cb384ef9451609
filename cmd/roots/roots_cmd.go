package roots

import (
	"fmt"
	"os"

	"github.com/LegacyCodeHQ/hdrmirror/headers"
	"github.com/LegacyCodeHQ/hdrmirror/internal/config"
	"github.com/spf13/cobra"
)

type rootsOptions struct {
	configPath string
	searchDirs []string
	dir        string
}

// NewCommand returns a new roots command instance.
func NewCommand() *cobra.Command {
	opts := &rootsOptions{}

	cmd := &cobra.Command{
		Use:   "roots <source-tree-root>",
		Short: "List the search directories in priority order",
		Long: `List the absolute search directories headers are resolved against, in
the order they are searched. Directories that do not exist are marked.

Examples:
  hdrmirror roots ~/aosp
  hdrmirror roots ~/aosp -C tools/search_dirs.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoots(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "C", "", fmt.Sprintf("Config file (default: %s in --dir)", config.FileName))
	cmd.Flags().StringSliceVarP(&opts.searchDirs, "search-dir", "s", nil, "Search directory relative to the source tree root (repeatable)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Directory to look for the config file in")

	return cmd
}

func runRoots(cmd *cobra.Command, baseDir string, opts *rootsOptions) error {
	cfg, err := config.Resolve(opts.searchDirs, nil, opts.configPath, opts.dir)
	if err != nil {
		return err
	}

	roots, err := headers.NewSearchRootSet(baseDir, cfg.SearchDirs)
	if err != nil {
		return err
	}

	for i, root := range roots.Roots() {
		marker := ""
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			marker = " (missing)"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d. %s%s\n", i+1, root, marker); err != nil {
			return err
		}
	}

	return nil
}
