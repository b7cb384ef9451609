package cmd

import (
	"os"

	"github.com/LegacyCodeHQ/hdrmirror/cmd/extract"
	"github.com/LegacyCodeHQ/hdrmirror/cmd/roots"
	"github.com/LegacyCodeHQ/hdrmirror/cmd/watch"
	"github.com/spf13/cobra"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hdrmirror",
		Short: "Copy the headers a C/C++ file needs out of a large source tree",
		Long: `hdrmirror resolves the #include directives of a C/C++ source file against
the search directories of a large source tree, such as an AOSP checkout, and
copies every header it reaches into a local tree with the same layout. The
result is the minimal header subset needed to build the file on its own.

Use 'hdrmirror --help' to see all available commands, or 'hdrmirror <command> --help'
for detailed information about a specific command.`,
		Version:      version,
		SilenceUsage: true,
		Annotations:  map[string]string{"buildDate": buildDate, "commit": commit},
	}

	cmd.AddCommand(extract.NewCommand())
	cmd.AddCommand(roots.NewCommand())
	cmd.AddCommand(watch.NewCommand())

	// Customize version template to show additional build info
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
