package lookup

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/plutus-ledger/plutus/internal/model"
)

// Header is the CSV header of a rule dataset.
const Header = "pattern,account"

const (
	numFields  = 2
	colPattern = 0
	colAccount = 1
)

// Rule maps descriptions that start with a match for Pattern to Account.
type Rule struct {
	Pattern *regexp.Regexp
	Source  string // pattern as written in the dataset
	Account model.Account
}

// NewRule compiles pattern case-insensitively and anchored at the start of
// the description.
func NewRule(pattern, account string) (Rule, error) {
	re, err := regexp.Compile(`(?i)^(?:` + pattern + `)`)
	if err != nil {
		return Rule{}, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	acct, err := model.ParseAccount(account)
	if err != nil {
		return Rule{}, err
	}
	return Rule{Pattern: re, Source: pattern, Account: acct}, nil
}

// Matches reports whether description begins with a match for the rule.
func (r Rule) Matches(description string) bool {
	return r.Pattern.MatchString(description)
}

// ReadRules reads a rule dataset. The first row must be the header.
func ReadRules(r io.Reader) ([]Rule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rules CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}
	records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	if got := strings.Join(records[0], ","); !strings.EqualFold(got, Header) {
		return nil, fmt.Errorf("unexpected rules header %q, want %q", got, Header)
	}

	var rules []Rule
	for i, rec := range records[1:] {
		rule, err := UnmarshalRule(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// WriteRules writes a rule dataset including the header.
func WriteRules(w io.Writer, rules []Rule) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rule := range rules {
		if err := cw.Write(MarshalRule(rule)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalRule converts a Rule to a CSV row.
func MarshalRule(rule Rule) []string {
	row := make([]string, numFields)
	row[colPattern] = rule.Source
	row[colAccount] = rule.Account.Name()
	return row
}

// UnmarshalRule converts a CSV row to a Rule.
func UnmarshalRule(record []string) (Rule, error) {
	if len(record) != numFields {
		return Rule{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	return NewRule(record[colPattern], strings.TrimSpace(record[colAccount]))
}
