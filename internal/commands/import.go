package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"k8s.io/klog"

	"github.com/plutus-ledger/plutus/internal/importer"
	"github.com/plutus-ledger/plutus/internal/journal"
	"github.com/plutus-ledger/plutus/internal/model"
)

const (
	formatLedger = "ledger"
	formatCSV    = "csv"
)

type importOptions struct {
	output      string
	rulesPath   string
	format      string
	skipInvalid bool
	archive     bool
}

func newImportCommand(global *globalOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <source> <file-or-dir>",
		Short: "Classify a statement into ledger transactions",
		Long: "Parses a statement CSV, or every CSV in a directory, and prints the balanced\n" +
			"ledger transactions ordered by post date. Use --output to append them to a journal.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, global, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "append transactions to this journal file")
	cmd.Flags().StringVar(&opts.rulesPath, "rules", "", "lookup rules CSV replacing the configured dataset")
	cmd.Flags().StringVar(&opts.format, "format", formatLedger, "stdout format: ledger or csv (--output always appends ledger text)")
	cmd.Flags().BoolVar(&opts.skipInvalid, "skip-invalid", false, "report and skip rows that cannot be classified")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "move imported files into <dir>/processed")

	return cmd
}

func runImport(cmd *cobra.Command, global *globalOptions, opts importOptions, format, path string) error {
	if opts.format != formatLedger && opts.format != formatCSV {
		return fmt.Errorf("unknown output format %q", opts.format)
	}
	if opts.output != "" && opts.format == formatCSV {
		return errors.New("--format csv writes to stdout and cannot be combined with --output")
	}

	src, err := global.source(format)
	if err != nil {
		return err
	}
	buildOpts, err := global.buildOptions(cmd)
	if err != nil {
		return err
	}
	buildOpts.RulesPath = opts.rulesPath
	imp, err := src.Build(buildOpts)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading import path: %w", err)
	}

	var dir string
	var files []importer.FileInfo
	if info.IsDir() {
		dir = path
		files, err = importer.Scan(dir)
		if err != nil {
			return err
		}
	} else {
		if opts.archive {
			return errors.New("--archive needs a directory of statements")
		}
		files = []importer.FileInfo{{Name: info.Name(), Path: path, Size: info.Size()}}
	}

	var txns []*model.Transaction
	for _, f := range files {
		got, err := importFile(imp, f, opts.skipInvalid)
		if err != nil {
			return err
		}
		klog.V(1).Infof("imported %d transactions from %s", len(got), f.Name)
		txns = append(txns, got...)
	}
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].PostDate.Before(txns[j].PostDate)
	})

	if err := writeTransactions(cmd.OutOrStdout(), opts, txns); err != nil {
		return err
	}

	if opts.archive {
		for _, f := range files {
			if err := importer.MarkProcessed(dir, f.Name); err != nil {
				return err
			}
			klog.V(1).Infof("archived %s", filepath.Join(dir, f.Name))
		}
	}
	return nil
}

func importFile(imp importer.Importer, f importer.FileInfo, skipInvalid bool) ([]*model.Transaction, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer file.Close()

	txns, rowErrs, err := importer.Import(imp, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	if len(rowErrs) > 0 && !skipInvalid {
		return nil, fmt.Errorf("%s: %d rows could not be classified, first: %w", f.Name, len(rowErrs), rowErrs[0])
	}
	for _, re := range rowErrs {
		klog.Warningf("%s: skipping %v", f.Name, re)
	}
	return txns, nil
}

func writeTransactions(w io.Writer, opts importOptions, txns []*model.Transaction) error {
	if opts.output != "" {
		if err := journal.NewService(opts.output).Append(txns); err != nil {
			return err
		}
		fmt.Fprintf(w, "Appended %d transactions to %s\n", len(txns), opts.output)
		return nil
	}
	if opts.format == formatCSV {
		return journal.WritePostings(w, txns)
	}
	return journal.Write(w, txns)
}
