package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/version"
	"github.com/felixgeelhaar/todo/internal/ux"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

var (
	versionVerbose bool
	versionFormat  string
)

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "show detailed version information")
	versionCmd.Flags().StringVar(&versionFormat, "format", ux.FormatText, "output format: text, json, yaml")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.GetInfo()
	out := cmd.OutOrStdout()

	f, err := ux.NewFormatter(versionFormat, out)
	if err != nil {
		return err
	}
	if ux.IsStructured(versionFormat) {
		return f.Format(info)
	}

	if versionVerbose {
		fmt.Fprintln(out, info.String())
		return nil
	}

	fmt.Fprintf(out, "todo %s\n", info.Short())
	return nil
}
