package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateFormat is the date layout used in rendered ledger text.
const DateFormat = "2006/01/02"

// Status is the cleared state of a transaction or entry.
type Status string

const (
	StatusNone    Status = ""
	StatusCleared Status = "*"
	StatusPending Status = "!"
)

// Entry is one posting line of a transaction. A nil Amount marks an implied
// posting that takes whatever value balances the transaction.
type Entry struct {
	Account       Account
	Status        Status
	Amount        *Amount
	LotPrice      *Amount
	LotDate       *time.Time
	PurchasePrice *Amount
}

// Equal reports structural equality. Amounts compare numerically.
func (e Entry) Equal(o Entry) bool {
	return e.Account == o.Account &&
		e.Status == o.Status &&
		amountPtrEqual(e.Amount, o.Amount) &&
		amountPtrEqual(e.LotPrice, o.LotPrice) &&
		datePtrEqual(e.LotDate, o.LotDate) &&
		amountPtrEqual(e.PurchasePrice, o.PurchasePrice)
}

func amountPtrEqual(a, b *Amount) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func datePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// String renders the entry as it appears under a transaction header, without indentation:
//
//	* Assets:Brokerage  3.14 AAPL {$5.00} [2022/04/01] @ $10.00
func (e Entry) String() string {
	var b strings.Builder
	if e.Status != StatusNone {
		b.WriteString(string(e.Status))
		b.WriteByte(' ')
	}
	b.WriteString(e.Account.Name())
	if e.Amount == nil {
		return b.String()
	}
	b.WriteString("  ")
	b.WriteString(e.Amount.String())
	if e.LotPrice != nil {
		b.WriteString(" {" + e.LotPrice.String() + "}")
	}
	if e.LotDate != nil {
		b.WriteString(" [" + e.LotDate.Format(DateFormat) + "]")
	}
	if e.PurchasePrice != nil {
		b.WriteString(" @ " + e.PurchasePrice.String())
	}
	return b.String()
}

// Transaction is a dated set of entries that must balance to zero.
type Transaction struct {
	PostDate      time.Time
	EffectiveDate *time.Time
	Description   string
	Status        Status
	Code          string

	entries []Entry
}

// NewTransaction creates an empty transaction. The description must be a single line.
func NewTransaction(postDate time.Time, description string) (*Transaction, error) {
	if err := checkDescription(description); err != nil {
		return nil, err
	}
	return &Transaction{PostDate: postDate, Description: description}, nil
}

func checkDescription(s string) error {
	if n := strings.Count(s, "\n") + strings.Count(s, "\r"); n > 0 {
		return fmt.Errorf("%w (found %d line breaks)", ErrInvalidDescription, n)
	}
	return nil
}

// AddEntry appends e unless an equal entry is already present. It reports
// whether the entry was added.
func (t *Transaction) AddEntry(e Entry) bool {
	for _, have := range t.entries {
		if have.Equal(e) {
			return false
		}
	}
	t.entries = append(t.entries, e)
	return true
}

// Entries returns the entries in insertion order.
func (t *Transaction) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Net sums entry amounts per unit key. Implied entries are skipped. The
// result is ordered by kind then unit.
func (t *Transaction) Net() []Amount {
	sums := make(map[UnitKey]Amount)
	for _, e := range t.entries {
		if e.Amount == nil {
			continue
		}
		if cur, ok := sums[e.Amount.Key]; ok {
			// Keys match, so Add cannot fail.
			sums[e.Amount.Key], _ = cur.Add(*e.Amount)
		} else {
			sums[e.Amount.Key] = *e.Amount
		}
	}

	net := make([]Amount, 0, len(sums))
	for _, a := range sums {
		net = append(net, a)
	}
	sort.Slice(net, func(i, j int) bool {
		if net[i].Key.Kind != net[j].Key.Kind {
			return net[i].Key.Kind < net[j].Key.Kind
		}
		return net[i].Key.Unit < net[j].Key.Unit
	})
	return net
}

// CheckEntries verifies the transaction balances: every unit nets to zero
// unless exactly one entry has an implied amount.
func (t *Transaction) CheckEntries() error {
	if err := checkDescription(t.Description); err != nil {
		return err
	}

	implied := 0
	for _, e := range t.entries {
		if e.Amount == nil {
			implied++
		}
	}
	if implied > 1 {
		return fmt.Errorf("%w (%d found)", ErrAmbiguousImplication, implied)
	}
	if implied == 1 {
		return nil
	}

	net := t.Net()
	for _, a := range net {
		if !a.IsZero() {
			parts := make([]string, len(net))
			for i, n := range net {
				parts[i] = n.String()
			}
			return fmt.Errorf("%w (net: %s)", ErrImbalance, strings.Join(parts, ", "))
		}
	}
	return nil
}

// Header renders the first line of the transaction:
//
//	2022/04/01=2022/04/03 * (#101) Description
func (t *Transaction) Header() string {
	pieces := make([]string, 0, 4)
	date := t.PostDate.Format(DateFormat)
	if t.EffectiveDate != nil {
		date += "=" + t.EffectiveDate.Format(DateFormat)
	}
	pieces = append(pieces, date)
	if t.Status != StatusNone {
		pieces = append(pieces, string(t.Status))
	}
	if t.Code != "" {
		pieces = append(pieces, "("+t.Code+")")
	}
	pieces = append(pieces, t.Description)
	return strings.Join(pieces, " ")
}

// String renders the transaction as ledger text, one indented line per entry.
func (t *Transaction) String() string {
	lines := make([]string, 0, len(t.entries)+1)
	lines = append(lines, t.Header())
	for _, e := range t.entries {
		lines = append(lines, "    "+e.String())
	}
	return strings.Join(lines, "\n")
}
