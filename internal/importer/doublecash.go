package importer

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"k8s.io/klog"

	"github.com/plutus-ledger/plutus/internal/config"
	"github.com/plutus-ledger/plutus/internal/lookup"
	"github.com/plutus-ledger/plutus/internal/model"
)

//go:embed data/citi_doublecash_accounts.csv
var doubleCashRules []byte

// DoubleCashFormat is the source name of Citi DoubleCash card exports.
const DoubleCashFormat = "citi-doublecash"

const (
	doubleCashDateFormat = "01/02/2006"
	doubleCashCurrency   = "USD"

	colStatus = "status"
	colDate   = "date"
	colDesc   = "description"
	colDebit  = "debit"
	colCredit = "credit"
)

var doubleCashColumns = []string{colStatus, colDate, colDesc, colDebit, colCredit}

// DoubleCashDefaults are the built-in accounts for DoubleCash statements.
var DoubleCashDefaults = config.Accounts{
	Asset:     "Assets:Checking",
	Liability: "Liabilities:CC:DoubleCash",
	Points:    "Expenses:Points",
	Unknown:   "Expenses:Unknown",
}

// DoubleCashSource describes the citi-doublecash format. Account overrides are
// read from PLUTUS_CITI_ASSET_ACCOUNT, PLUTUS_CITI_LIABILITY_ACCOUNT,
// PLUTUS_CITI_POINTS_ACCOUNT and PLUTUS_CITI_UNKNOWN_ACCOUNT.
func DoubleCashSource() Source {
	return Source{
		Format:    DoubleCashFormat,
		Help:      "Citi DoubleCash credit card CSV export",
		EnvPrefix: "PLUTUS_CITI_",
		Defaults:  DoubleCashDefaults,
		Rules:     DoubleCashRules,
		New: func(accts config.AccountSet, rules *lookup.Service) Importer {
			return NewDoubleCash(accts, rules)
		},
	}
}

// DoubleCashRules opens the bundled DoubleCash lookup dataset.
func DoubleCashRules() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(doubleCashRules)), nil
}

// DoubleCash parses and classifies Citi DoubleCash statements.
type DoubleCash struct {
	accounts config.AccountSet
	rules    *lookup.Service
}

// NewDoubleCash creates a DoubleCash importer.
func NewDoubleCash(accts config.AccountSet, rules *lookup.Service) *DoubleCash {
	return &DoubleCash{accounts: accts, rules: rules}
}

// Format returns the source name.
func (d *DoubleCash) Format() string { return DoubleCashFormat }

// Accounts returns the accounts the importer posts to.
func (d *DoubleCash) Accounts() config.AccountSet { return d.accounts }

// Rules returns the lookup service used for counterparties.
func (d *DoubleCash) Rules() *lookup.Service { return d.rules }

// Parse reads a DoubleCash CSV with the header Status,Date,Description,Debit,Credit.
// Columns are matched by name, so extra columns are ignored.
func (d *DoubleCash) Parse(r io.Reader) ([]model.StatementRow, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", DoubleCashFormat, err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	cols, err := headerIndex(records[0], doubleCashColumns)
	if err != nil {
		return nil, err
	}

	var rows []model.StatementRow
	for i, rec := range records[1:] {
		row, err := parseDoubleCashRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		row.Line = i + 2
		rows = append(rows, row)
	}
	return rows, nil
}

// headerIndex maps lower-cased column names to their position.
func headerIndex(header []string, required []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q in header", name)
		}
	}
	return cols, nil
}

func parseDoubleCashRow(rec []string, cols map[string]int) (model.StatementRow, error) {
	rawDate := strings.TrimSpace(rec[cols[colDate]])
	date, err := time.Parse(doubleCashDateFormat, rawDate)
	if err != nil {
		return model.StatementRow{}, fmt.Errorf("parsing date %q: %w", rawDate, err)
	}

	debit, err := parseAmount(rec[cols[colDebit]])
	if err != nil {
		return model.StatementRow{}, fmt.Errorf("parsing debit: %w", err)
	}
	credit, err := parseAmount(rec[cols[colCredit]])
	if err != nil {
		return model.StatementRow{}, fmt.Errorf("parsing credit: %w", err)
	}

	return model.StatementRow{
		Status:      strings.TrimSpace(rec[cols[colStatus]]),
		PostDate:    date,
		Description: rec[cols[colDesc]],
		Debit:       debit,
		Credit:      credit,
	}, nil
}

// parseAmount parses a decimal string; empty means absent.
func parseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	clean := strings.NewReplacer(",", "", "$", "").Replace(s)
	v, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return decimal.NewNullDecimal(v), nil
}

// Classify builds the balanced ledger transaction for one statement row.
//
// A debit is a charge: the card liability is credited and the counterparty
// comes from the lookup rules. A credit is a payment or adjustment: statement
// credits go to the points account, "payment thank you" to the asset account,
// anything else through the lookup rules. Lookup misses use the unknown account.
func (d *DoubleCash) Classify(row model.StatementRow) (*model.Transaction, error) {
	if row.Debit.Valid == row.Credit.Valid {
		return nil, fmt.Errorf("%w: exactly one of debit or credit must be set", ErrInvalidRow)
	}

	txn, err := model.NewTransaction(row.PostDate, row.Description)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(strings.TrimSpace(row.Status), "cleared") {
		txn.Status = model.StatusCleared
	}

	var amount decimal.Decimal
	var counterparty model.Account
	if row.Debit.Valid {
		amount = row.Debit.Decimal
		counterparty, err = d.counterparty(row.Description)
	} else {
		amount = row.Credit.Decimal
		desc := strings.ToLower(row.Description)
		switch {
		case strings.Contains(desc, "statement credit"):
			counterparty = d.accounts.Points
		case strings.Contains(desc, "payment thank you"):
			counterparty = d.accounts.Asset
		default:
			counterparty, err = d.counterparty(row.Description)
		}
	}
	if err != nil {
		return nil, err
	}

	liability := model.Money(amount.Neg(), doubleCashCurrency)
	other := model.Money(amount, doubleCashCurrency)
	txn.AddEntry(model.Entry{Account: d.accounts.Liability, Amount: &liability})
	txn.AddEntry(model.Entry{Account: counterparty, Amount: &other})

	if err := txn.CheckEntries(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	return txn, nil
}

// counterparty resolves description through the lookup rules, falling back to
// the unknown account on a miss.
func (d *DoubleCash) counterparty(description string) (model.Account, error) {
	acct, err := d.rules.Lookup(description)
	if errors.Is(err, lookup.ErrNotFound) {
		klog.V(2).Infof("no lookup rule for %q, using %s", description, d.accounts.Unknown)
		return d.accounts.Unknown, nil
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("looking up %q: %w", description, err)
	}
	return acct, nil
}
