package lookup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"k8s.io/klog"

	"github.com/plutus-ledger/plutus/internal/model"
)

// ErrNotFound means no rule matched a description.
var ErrNotFound = errors.New("no matching account")

// Table is an immutable, ordered rule list. The first matching rule wins.
type Table struct {
	rules []Rule
}

// NewTable creates a Table from rules in priority order.
func NewTable(rules []Rule) *Table {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Table{rules: cp}
}

// Rules returns a copy of the rules in priority order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Len returns the number of rules.
func (t *Table) Len() int { return len(t.rules) }

// Lookup returns the account of the first rule matching description.
func (t *Table) Lookup(description string) (model.Account, error) {
	for _, r := range t.rules {
		if r.Matches(description) {
			return r.Account, nil
		}
	}
	return model.Account{}, fmt.Errorf("%w for %q", ErrNotFound, description)
}

// Opener returns the dataset a Service loads on first use.
type Opener func() (io.ReadCloser, error)

// Service shares one rule Table between callers. The table is loaded lazily
// on first use, at most once, and Reload replaces it wholesale so concurrent
// lookups see either the old or the new table.
type Service struct {
	name  string
	open  Opener
	mu    sync.Mutex // serializes loads
	table atomic.Pointer[Table]
}

// NewService creates a Service that loads its table from open on first use.
// name identifies the dataset in log and error messages.
func NewService(name string, open Opener) *Service {
	return &Service{name: name, open: open}
}

// NewStaticService creates a Service already holding t.
func NewStaticService(t *Table) *Service {
	s := &Service{name: "static"}
	s.table.Store(t)
	return s
}

// Table returns the current table, loading it if needed.
func (s *Service) Table() (*Table, error) {
	if t := s.table.Load(); t != nil {
		return t, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.table.Load(); t != nil {
		return t, nil
	}
	if s.open == nil {
		return nil, fmt.Errorf("rules %s: no dataset configured", s.name)
	}

	rc, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("opening rules %s: %w", s.name, err)
	}
	defer rc.Close()

	t, err := s.parse(rc)
	if err != nil {
		return nil, err
	}
	s.table.Store(t)
	return t, nil
}

// Lookup resolves description against the current table.
func (s *Service) Lookup(description string) (model.Account, error) {
	t, err := s.Table()
	if err != nil {
		return model.Account{}, err
	}
	return t.Lookup(description)
}

// Reload parses a new dataset from r and swaps it in. On error the current
// table is kept.
func (s *Service) Reload(r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.parse(r)
	if err != nil {
		return err
	}
	s.table.Store(t)
	return nil
}

// ReloadFile is Reload from a file path.
func (s *Service) ReloadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening rules file: %w", err)
	}
	defer f.Close()

	if err := s.Reload(f); err != nil {
		return fmt.Errorf("reloading rules from %s: %w", path, err)
	}
	return nil
}

func (s *Service) parse(r io.Reader) (*Table, error) {
	rules, err := ReadRules(r)
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", s.name, err)
	}
	klog.V(1).Infof("loaded %d lookup rules (%s)", len(rules), s.name)
	return NewTable(rules), nil
}
