package model

import (
	"fmt"
	"strings"
)

// Category is the top-level classification of a ledger account.
type Category string

const (
	CategoryAssets      Category = "Assets"
	CategoryEquity      Category = "Equity"
	CategoryExpenses    Category = "Expenses"
	CategoryIncome      Category = "Income"
	CategoryLiabilities Category = "Liabilities"
)

// Categories lists every recognized account category.
var Categories = []Category{
	CategoryAssets,
	CategoryEquity,
	CategoryExpenses,
	CategoryIncome,
	CategoryLiabilities,
}

// AccountSeparator delimits the levels of an account name.
const AccountSeparator = ":"

// ParseCategory returns the Category named s.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Account is a hierarchical ledger account such as "Assets:MyBank:Checking".
// The zero Account is not valid; use ParseAccount.
type Account struct {
	name     string
	category Category
}

// ParseAccount validates name and returns the Account. The first level of the
// name must be one of Categories.
func ParseAccount(name string) (Account, error) {
	first, _, _ := strings.Cut(name, AccountSeparator)
	cat, err := ParseCategory(first)
	if err != nil {
		return Account{}, fmt.Errorf("account %q: %w", name, err)
	}
	return Account{name: name, category: cat}, nil
}

// MustParseAccount is like ParseAccount but panics on error.
func MustParseAccount(name string) Account {
	a, err := ParseAccount(name)
	if err != nil {
		panic(err)
	}
	return a
}

// Name returns the full account name.
func (a Account) Name() string { return a.name }

// Category returns the account's top-level category.
func (a Account) Category() Category { return a.category }

// IsZero reports whether a was never initialized.
func (a Account) IsZero() bool { return a.name == "" }

// Levels splits the name into its hierarchy levels.
func (a Account) Levels() []string {
	return strings.Split(a.name, AccountSeparator)
}

func (a Account) String() string { return a.name }
