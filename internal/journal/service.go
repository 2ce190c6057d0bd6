package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"k8s.io/klog"

	"github.com/plutus-ledger/plutus/internal/model"
)

// Write renders txns as ledger text, separated by blank lines.
func Write(w io.Writer, txns []*model.Transaction) error {
	for i, txn := range txns {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("writing journal: %w", err)
			}
		}
		if _, err := io.WriteString(w, txn.String()+"\n"); err != nil {
			return fmt.Errorf("writing transaction %d: %w", i+1, err)
		}
	}
	return nil
}

// Service appends transactions to a ledger journal file.
type Service struct {
	path string
}

// NewService creates a journal Service for the file at path.
func NewService(path string) *Service {
	return &Service{path: path}
}

// Path returns the journal file path.
func (s *Service) Path() string { return s.path }

// Append validates txns and appends them to the journal, creating the file
// and its directory if needed. Nothing is written if any transaction fails
// validation.
func (s *Service) Append(txns []*model.Transaction) error {
	if verrs := Validate(txns); len(verrs) > 0 {
		return fmt.Errorf("validation failed: %w", verrs)
	}
	if len(txns) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	info, err := os.Stat(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat journal: %w", err)
	}
	hasContent := err == nil && info.Size() > 0

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if hasContent {
		if _, err := io.WriteString(f, "\n"); err != nil {
			return fmt.Errorf("writing journal: %w", err)
		}
	}
	if err := Write(f, txns); err != nil {
		return err
	}
	klog.V(1).Infof("appended %d transactions to %s", len(txns), s.path)
	return f.Close()
}
