package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/exchange"
	"github.com/felixgeelhaar/todo/internal/fsutil"
	"github.com/felixgeelhaar/todo/internal/mutate"
	"github.com/felixgeelhaar/todo/internal/query"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"ex", "out"},
	Short:   "Export tasks as JSON, Markdown, text, YAML or CSV",
	Long: `Export the open tasks of the current branch. Widen the selection with
--all (completed), --archived and --all-branches.

Examples:
  todo export --format markdown --all
  todo export --all --archived --all-branches --output backup.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var exportOpts struct {
	format      string
	output      string
	branch      string
	allBranches bool
	all         bool
	archived    bool
	tags        []string
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	Aliases: []string{"imp", "in"},
	Short:   "Import tasks from a JSON or CSV file",
	Long: `Import tasks from a JSON array (as written by 'todo export') or a CSV file
with a header row containing at least a title column. Use "-" to read
standard input.

Every record is checked on its own: invalid records are reported and
skipped, the others are imported. Imported tasks get new ids; records
without a branch go to the current branch (or --branch). With --merge a
record whose uid matches an existing task updates that task.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importOpts struct {
	format string
	branch string
	merge  bool
}

func init() {
	exportCmd.Flags().StringVarP(&exportOpts.format, "format", "f", string(exchange.FormatJSON), "json, markdown, text, yaml or csv")
	exportCmd.Flags().StringVarP(&exportOpts.output, "output", "o", "", "write to this file instead of standard output")
	exportCmd.Flags().StringVarP(&exportOpts.branch, "branch", "b", "", "branch to export (default: current branch)")
	exportCmd.Flags().BoolVar(&exportOpts.allBranches, "all-branches", false, "export every branch")
	exportCmd.Flags().BoolVarP(&exportOpts.all, "all", "a", false, "include completed tasks")
	exportCmd.Flags().BoolVar(&exportOpts.archived, "archived", false, "include archived tasks")
	exportCmd.Flags().StringSliceVar(&exportOpts.tags, "tag", nil, "only tasks with any of these tags (repeatable)")

	importCmd.Flags().StringVarP(&importOpts.format, "format", "f", "", "json or csv (default: from the file extension)")
	importCmd.Flags().StringVarP(&importOpts.branch, "branch", "b", "", "branch for records without one (default: current branch)")
	importCmd.Flags().BoolVar(&importOpts.merge, "merge", false, "update tasks with a matching uid instead of adding copies")

	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := exchange.ParseFormat(exportOpts.format)
	if err != nil {
		return err
	}
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	f := query.Filter{
		Branch:          cc.Scope(exportOpts.branch, exportOpts.allBranches),
		Status:          query.StatusOpen,
		IncludeArchived: exportOpts.archived,
		Tags:            domain.NormalizeTags(exportOpts.tags),
	}
	if exportOpts.all {
		f.Status = query.StatusAll
	}
	tasks := cc.Query.Select(f, query.Sort{Key: query.SortCreated})

	if exportOpts.output == "" {
		return exchange.Export(cc.Out, tasks, format)
	}

	var buf bytes.Buffer
	if err := exchange.Export(&buf, tasks, format); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(exportOpts.output, buf.Bytes(), 0o644); err != nil {
		return todoerrors.NewFileWriteError(exportOpts.output, err)
	}
	cc.Log.Debug("exported tasks", "format", format, "count", len(tasks), "path", exportOpts.output)
	cc.Printer(false).Success("Exported %d tasks to %s", len(tasks), exportOpts.output)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	format, err := importFormat(importOpts.format, args[0])
	if err != nil {
		return err
	}
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	var r io.Reader = cc.In
	if args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return todoerrors.NewFileReadError(args[0], err)
		}
		defer file.Close()
		r = file
	}

	var records []exchange.Record
	switch format {
	case exchange.FormatCSV:
		records, err = exchange.DecodeCSV(r)
	default:
		records, err = exchange.DecodeJSON(r)
	}
	if err != nil {
		return err
	}

	report, err := cc.Mutate.Import(records, mutate.ImportOptions{
		Branch: cc.Branch(importOpts.branch),
		Merge:  importOpts.merge,
	})
	if err != nil {
		return err
	}
	if err := cc.Persist(); err != nil {
		return err
	}
	cc.Printer(true).ImportReport(report)
	return report.Err()
}

// importFormat picks the decoder: the --format flag, else the file
// extension, else JSON.
func importFormat(flag, path string) (exchange.Format, error) {
	if flag == "" {
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			return exchange.FormatCSV, nil
		}
		return exchange.FormatJSON, nil
	}
	format, err := exchange.ParseFormat(flag)
	if err != nil {
		return "", err
	}
	if format != exchange.FormatJSON && format != exchange.FormatCSV {
		return "", todoerrors.NewValidationError(todoerrors.ErrCodeInvalidPayload,
			"cannot import %s", format).
			WithSuggestion("Import supports json and csv")
	}
	return format, nil
}
