package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/plutus-ledger/plutus/internal/config"
	"github.com/plutus-ledger/plutus/internal/lookup"
	"github.com/plutus-ledger/plutus/internal/model"
)

var (
	// ErrInvalidRow means a statement row cannot be classified as given,
	// e.g. it has both or neither of a debit and a credit.
	ErrInvalidRow = errors.New("invalid statement row")
	// ErrInvariant means a classifier built a transaction that does not balance.
	ErrInvariant = errors.New("internal invariant violated")
)

// Importer converts statement files of one format into ledger transactions.
type Importer interface {
	Format() string
	Parse(r io.Reader) ([]model.StatementRow, error)
	Classify(row model.StatementRow) (*model.Transaction, error)
}

// Source describes a statement format and how to build its Importer.
type Source struct {
	Format    string
	Help      string
	EnvPrefix string          // prefix of the environment overrides, e.g. PLUTUS_CITI_
	Defaults  config.Accounts // built-in account names
	Rules     lookup.Opener   // bundled lookup dataset
	New       func(accts config.AccountSet, rules *lookup.Service) Importer
}

// BuildOptions carries the inputs used to configure a Source.
type BuildOptions struct {
	Config  *config.Config
	Environ map[string]string
	// RulesPath, when set, replaces both the bundled and the configured dataset.
	RulesPath string
}

// Resolve returns the source's validated accounts and its lookup rules, with
// environment and config file overrides applied.
func (s Source) Resolve(opts BuildOptions) (config.AccountSet, *lookup.Service, error) {
	settings, err := config.Resolve(opts.Config.Source(s.Format), s.Defaults, s.EnvPrefix, opts.Environ)
	if err != nil {
		return config.AccountSet{}, nil, fmt.Errorf("%s: %w", s.Format, err)
	}

	accts, err := settings.Accounts.Parse()
	if err != nil {
		return config.AccountSet{}, nil, fmt.Errorf("%s accounts: %w", s.Format, err)
	}

	rules := lookup.NewService(s.Format, s.Rules)
	path := settings.Rules
	if opts.RulesPath != "" {
		path = opts.RulesPath
	}
	if path != "" {
		if err := rules.ReloadFile(path); err != nil {
			return config.AccountSet{}, nil, err
		}
	}
	return accts, rules, nil
}

// Build resolves the source and returns its Importer.
func (s Source) Build(opts BuildOptions) (Importer, error) {
	accts, rules, err := s.Resolve(opts)
	if err != nil {
		return nil, err
	}
	return s.New(accts, rules), nil
}

// Registry holds named statement sources.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source. Panics on duplicate format.
func (r *Registry) Register(s Source) {
	key := strings.ToLower(s.Format)
	if _, ok := r.sources[key]; ok {
		panic("duplicate source format: " + key)
	}
	r.sources[key] = s
}

// Get returns the source for format.
func (r *Registry) Get(format string) (Source, bool) {
	s, ok := r.sources[strings.ToLower(format)]
	return s, ok
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.sources))
	for k := range r.sources {
		formats = append(formats, k)
	}
	sort.Strings(formats)
	return formats
}

// DefaultRegistry returns a registry with all built-in sources.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(DoubleCashSource())
	return r
}

// RowError records a statement row that could not be classified.
type RowError struct {
	Line        int
	Description string
	Err         error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%q): %v", e.Line, e.Description, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ClassifyAll classifies rows into transactions ordered by post date. Rows
// with equal dates keep their statement order. Failed rows are returned as
// RowErrors and never silently dropped; the caller decides whether to abort.
func ClassifyAll(imp Importer, rows []model.StatementRow) ([]*model.Transaction, []RowError) {
	ordered := make([]model.StatementRow, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PostDate.Before(ordered[j].PostDate)
	})

	var txns []*model.Transaction
	var errs []RowError
	for _, row := range ordered {
		txn, err := imp.Classify(row)
		if err != nil {
			errs = append(errs, RowError{Line: row.Line, Description: row.Description, Err: err})
			continue
		}
		txns = append(txns, txn)
	}
	return txns, errs
}

// Import parses a statement from r and classifies every row.
func Import(imp Importer, r io.Reader) ([]*model.Transaction, []RowError, error) {
	rows, err := imp.Parse(r)
	if err != nil {
		return nil, nil, err
	}
	txns, rowErrs := ClassifyAll(imp, rows)
	return txns, rowErrs, nil
}

// processedDir is the subdirectory imported statements are moved to.
const processedDir = "processed"

// FileInfo describes a CSV file found by Scan.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the CSV files directly inside dir.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from dir to dir/processed/.
func MarkProcessed(dir, fileName string) error {
	src := filepath.Join(dir, fileName)
	dstDir := filepath.Join(dir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
