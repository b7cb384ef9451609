package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LegacyCodeHQ/hdrmirror/cmd/extract"
	"github.com/spf13/cobra"
)

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &extract.Options{}

	cmd := &cobra.Command{
		Use:   "watch <source-tree-root> <file>",
		Short: "Re-extract headers whenever the source file changes",
		Long: `Run extract once, then watch the source file and run it again after
every change. Each run starts from scratch.

Examples:
  cd jni/include && hdrmirror watch ~/aosp ../dexposed.cpp`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runWatch(ctx, cmd, args[0], args[1], opts)
		},
	}

	extract.AddFlags(cmd, opts)

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, baseDir, file string, opts *extract.Options) error {
	if err := runOnce(cmd, baseDir, file, opts); err != nil {
		return fmt.Errorf("initial extract failed: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n", file)
	fmt.Fprintf(cmd.ErrOrStderr(), "Press Ctrl+C to stop\n")

	return watchAndRerun(ctx, file, cmd.ErrOrStderr(), func() {
		if err := runOnce(cmd, baseDir, file, opts); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "extract error: %v\n", err)
		}
	})
}

func runOnce(cmd *cobra.Command, baseDir, file string, opts *extract.Options) error {
	summary, err := extract.Run(cmd.OutOrStdout(), cmd.ErrOrStderr(), baseDir, file, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Copied %d headers (%d not found)\n", len(summary.Copied), len(summary.Unresolved))
	return nil
}
