package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/plutus-ledger/plutus/internal/model"
)

// Header is the CSV header of a postings export, one row per entry.
const Header = "date,status,description,account,amount,unit"

const (
	numFields  = 6
	dateFormat = "2006-01-02"
	colDate    = 0
	colStatus  = 1
	colDesc    = 2
	colAccount = 3
	colAmount  = 4
	colUnit    = 5
)

// WritePostings writes every entry of txns as a CSV row (including header).
func WritePostings(w io.Writer, txns []*model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, txn := range txns {
		for _, e := range txn.Entries() {
			if err := cw.Write(MarshalPosting(txn, e)); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalPosting converts one entry of txn to a CSV row. An entry status wins
// over the transaction status. Implied amounts leave amount and unit empty.
func MarshalPosting(txn *model.Transaction, e model.Entry) []string {
	rec := make([]string, numFields)
	rec[colDate] = txn.PostDate.Format(dateFormat)
	rec[colStatus] = statusName(txn.Status)
	if e.Status != model.StatusNone {
		rec[colStatus] = statusName(e.Status)
	}
	rec[colDesc] = txn.Description
	rec[colAccount] = e.Account.Name()

	if e.Amount != nil {
		rec[colAmount] = e.Amount.Quantity.StringFixed(int32(e.Amount.Scale()))
		rec[colUnit] = e.Amount.Key.Unit
	}
	return rec
}

func statusName(s model.Status) string {
	switch s {
	case model.StatusCleared:
		return "cleared"
	case model.StatusPending:
		return "pending"
	}
	return ""
}
