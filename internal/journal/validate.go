package journal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/plutus-ledger/plutus/internal/model"
)

var (
	// ErrNoDate means a transaction has a zero post date.
	ErrNoDate = errors.New("missing post date")
	// ErrTooFewEntries means a transaction has fewer than two entries.
	ErrTooFewEntries = errors.New("transaction needs at least two entries")
	// ErrNoAccount means an entry was built without an account.
	ErrNoAccount = errors.New("entry has no account")
	// ErrPrecision means a money amount is finer than its currency's scale.
	ErrPrecision = errors.New("amount has more decimal places than its currency allows")
)

// ValidationError describes a single problem with one transaction.
type ValidationError struct {
	Index       int // position of the transaction in the batch, from 1
	Description string
	Err         error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("transaction %d [%s]: %v", e.Index, e.Description, e.Err)
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidationErrors is the result of validating a batch.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, ve := range v {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is and errors.As match any contained error.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, ve := range v {
		errs[i] = ve
	}
	return errs
}

// Validate checks every transaction before it is written: a post date, at
// least two entries, an account on each entry, money no finer than its
// currency's scale, and balanced entries.
func Validate(txns []*model.Transaction) ValidationErrors {
	var errs ValidationErrors
	add := func(i int, txn *model.Transaction, err error) {
		errs = append(errs, ValidationError{Index: i + 1, Description: txn.Description, Err: err})
	}

	for i, txn := range txns {
		if txn.PostDate.IsZero() {
			add(i, txn, ErrNoDate)
		}

		entries := txn.Entries()
		if len(entries) < 2 {
			add(i, txn, ErrTooFewEntries)
		}

		for _, e := range entries {
			if e.Account.IsZero() {
				add(i, txn, ErrNoAccount)
			}
			if e.Amount == nil || !e.Amount.IsMoney() {
				continue
			}
			scale := int32(e.Amount.Scale())
			if !e.Amount.Quantity.Equal(e.Amount.Quantity.Truncate(scale)) {
				add(i, txn, fmt.Errorf("%w: %s %s", ErrPrecision, e.Account, e.Amount.Quantity))
			}
		}

		if err := txn.CheckEntries(); err != nil {
			add(i, txn, err)
		}
	}
	return errs
}
