package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T { return &v }

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

var (
	asset     = MustParseAccount("Assets:MyBank:Checking")
	equity    = MustParseAccount("Equity:Opening Balance")
	expense   = MustParseAccount("Expenses:Fine Wines")
	income    = MustParseAccount("Income:Salary:Acme Corp")
	liability = MustParseAccount("Liabilities:Loans:Mortgage")
)

func TestAccountCategory(t *testing.T) {
	tests := []struct {
		acct Account
		want Category
	}{
		{asset, CategoryAssets},
		{equity, CategoryEquity},
		{expense, CategoryExpenses},
		{income, CategoryIncome},
		{liability, CategoryLiabilities},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.acct.Category(), "Category(%s)", tt.acct)
	}
	assert.Equal(t, "Assets:MyBank:Checking", asset.String())
	assert.Equal(t, []string{"Assets", "MyBank", "Checking"}, asset.Levels())
}

func TestParseAccount_InvalidCategory(t *testing.T) {
	for _, name := range []string{"Revenue:Sales", "assets:Checking", "", "Checking"} {
		_, err := ParseAccount(name)
		assert.ErrorIs(t, err, ErrInvalidCategory, "ParseAccount(%q)", name)
	}
	assert.Panics(t, func() { MustParseAccount("Bogus:Account") })
}

func TestAccountEquality(t *testing.T) {
	assert.Equal(t, MustParseAccount("Expenses:Dining"), MustParseAccount("Expenses:Dining"))
	assert.NotEqual(t, MustParseAccount("Expenses:Dining"), MustParseAccount("Expenses:Food"))

	seen := map[Account]bool{MustParseAccount("Expenses:Dining"): true}
	assert.True(t, seen[MustParseAccount("Expenses:Dining")])
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		amount Amount
		want   string
	}{
		{USD(decimal.Zero), "$0.00"},
		{USD(dec("123456.7800")), "$123,456.78"},
		{USD(dec("15")), "$15.00"},
		{USD(dec("-2000.05")), "-$2,000.05"},
		{Money(dec("1000"), "eur"), "€1,000.00"},
		{USD(dec("12345678901234567.89")), "$12,345,678,901,234,567.89"},
		{USD(dec("-90071992547409.93")), "-$90,071,992,547,409.93"},
		{USD(dec("0.005")), "$0.01"},
		{USD(dec("-0.001")), "$0.00"},
		{Money(dec("1234.5"), "JPY"), "¥1,235"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.amount.String())
	}
}

func TestCommodityString(t *testing.T) {
	pie := Commodity(dec("3.14"), "PIES")
	assert.Equal(t, "3.14 PIES", pie.String())
	assert.Equal(t, "1,200 AAPL", Commodity(dec("1200"), "AAPL").String())
	assert.Equal(t, "0.123456789012345678 ETH", Commodity(dec("0.123456789012345678"), "ETH").String())
	assert.Equal(t, "12,345,678,901,234,567,890 SAT", Commodity(dec("12345678901234567890"), "SAT").String())
	assert.Equal(t, "-123,456.5 PIES", Commodity(dec("-123456.50"), "PIES").String())
}

func TestCommodityAddAndMultiply(t *testing.T) {
	pie := Commodity(dec("3.14"), "PIES")
	two := decimal.NewFromInt(2)

	sum, err := pie.Add(pie)
	require.NoError(t, err)
	assert.True(t, sum.Equal(pie.Mul(two)))

	// Commutative and associative within a commodity.
	cake := Commodity(dec("1.5"), "PIES")
	ab, err := pie.Add(cake)
	require.NoError(t, err)
	ba, err := cake.Add(pie)
	require.NoError(t, err)
	assert.True(t, ab.Equal(ba))

	left, err := ab.Add(pie)
	require.NoError(t, err)
	bc, err := cake.Add(pie)
	require.NoError(t, err)
	right, err := pie.Add(bc)
	require.NoError(t, err)
	assert.True(t, left.Equal(right))
}

func TestAddIncompatibleUnits(t *testing.T) {
	pie := Commodity(dec("3.14"), "PIES")

	_, err := pie.Add(Commodity(dec("5"), "APPLES"))
	assert.ErrorIs(t, err, ErrUnitMismatch)

	_, err = USD(dec("5")).Add(Money(dec("5"), "EUR"))
	assert.ErrorIs(t, err, ErrUnitMismatch)

	// Same symbol, different kind.
	_, err = Commodity(dec("5"), "USD").Add(USD(dec("5")))
	assert.ErrorIs(t, err, ErrUnitMismatch)
}

func TestParseCurrency(t *testing.T) {
	code, err := ParseCurrency("usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", code)

	_, err = ParseCurrency("XXXX")
	assert.Error(t, err)
}

func TestEntryString(t *testing.T) {
	pie := Commodity(dec("3.14"), "PIES")
	e := Entry{
		Account:       asset,
		Status:        StatusCleared,
		Amount:        &pie,
		LotPrice:      ptr(USD(dec("5"))),
		LotDate:       ptr(date(2022, 4, 1)),
		PurchasePrice: ptr(USD(dec("10.00"))),
	}
	assert.Equal(t, "* Assets:MyBank:Checking  3.14 PIES {$5.00} [2022/04/01] @ $10.00", e.String())

	assert.Equal(t, "Assets:MyBank:Checking", Entry{Account: asset}.String())
}

func TestNewTransaction_MultiLineDescription(t *testing.T) {
	_, err := NewTransaction(date(2022, 4, 1), "Test transaction line 1\nline 2")
	assert.ErrorIs(t, err, ErrInvalidDescription)

	_, err = NewTransaction(date(2022, 4, 1), "carriage\rreturn")
	assert.ErrorIs(t, err, ErrInvalidDescription)
}

func fullTransaction(t *testing.T) *Transaction {
	t.Helper()
	txn, err := NewTransaction(date(2022, 4, 1), "Test transaction")
	require.NoError(t, err)
	txn.EffectiveDate = ptr(date(2022, 4, 3))
	txn.Status = StatusCleared
	txn.Code = "#101"
	txn.AddEntry(Entry{Account: asset, Amount: ptr(USD(dec("-10.00")))})
	txn.AddEntry(Entry{Account: expense, Amount: ptr(USD(dec("5")))})
	txn.AddEntry(Entry{Account: liability, Amount: ptr(USD(dec("5")))})
	return txn
}

func TestTransactionString(t *testing.T) {
	txn := fullTransaction(t)
	want := "2022/04/01=2022/04/03 * (#101) Test transaction\n" +
		"    Assets:MyBank:Checking  -$10.00\n" +
		"    Expenses:Fine Wines  $5.00\n" +
		"    Liabilities:Loans:Mortgage  $5.00"
	assert.Equal(t, want, txn.String())
}

func TestTransactionHeader_Minimal(t *testing.T) {
	txn, err := NewTransaction(date(2022, 4, 1), "Coffee")
	require.NoError(t, err)
	assert.Equal(t, "2022/04/01 Coffee", txn.Header())

	txn.Status = StatusPending
	assert.Equal(t, "2022/04/01 ! Coffee", txn.Header())
}

func TestCheckEntries_Balanced(t *testing.T) {
	txn := fullTransaction(t)
	require.NoError(t, txn.CheckEntries())

	net := txn.Net()
	require.Len(t, net, 1)
	assert.True(t, net[0].IsZero())
}

func TestCheckEntries_Imbalance(t *testing.T) {
	txn, err := NewTransaction(date(2022, 4, 1), "Test transaction")
	require.NoError(t, err)
	txn.AddEntry(Entry{Account: asset, Amount: ptr(USD(dec("10.00")))})
	txn.AddEntry(Entry{Account: expense, Amount: ptr(USD(dec("5")))})
	txn.AddEntry(Entry{Account: liability, Amount: ptr(USD(dec("5")))})

	err = txn.CheckEntries()
	assert.ErrorIs(t, err, ErrImbalance)
	assert.Contains(t, err.Error(), "$20.00")
}

func TestCheckEntries_PerUnit(t *testing.T) {
	// USD balances but the commodity leg does not.
	txn, err := NewTransaction(date(2022, 4, 1), "Buy shares")
	require.NoError(t, err)
	txn.AddEntry(Entry{Account: asset, Amount: ptr(Commodity(dec("10"), "AAPL"))})
	txn.AddEntry(Entry{Account: asset, Amount: ptr(USD(dec("-1500")))})
	txn.AddEntry(Entry{Account: expense, Amount: ptr(USD(dec("1500")))})

	assert.ErrorIs(t, txn.CheckEntries(), ErrImbalance)
	assert.Len(t, txn.Net(), 2)
}

func TestCheckEntries_ImpliedAmount(t *testing.T) {
	txn, err := NewTransaction(date(2022, 4, 1), "Test transaction")
	require.NoError(t, err)
	txn.AddEntry(Entry{Account: asset})
	txn.AddEntry(Entry{Account: expense, Amount: ptr(USD(dec("5")))})
	txn.AddEntry(Entry{Account: liability, Amount: ptr(USD(dec("5")))})

	require.NoError(t, txn.CheckEntries())

	// The implied entry absorbs -S.
	net := txn.Net()
	require.Len(t, net, 1)
	assert.True(t, net[0].Quantity.Equal(dec("10")))
	assert.Contains(t, txn.String(), "\n    Assets:MyBank:Checking\n")
}

func TestCheckEntries_TooManyImplied(t *testing.T) {
	txn, err := NewTransaction(date(2022, 4, 1), "Test transaction")
	require.NoError(t, err)
	txn.AddEntry(Entry{Account: asset})
	txn.AddEntry(Entry{Account: expense})
	txn.AddEntry(Entry{Account: liability, Amount: ptr(USD(dec("5")))})

	assert.ErrorIs(t, txn.CheckEntries(), ErrAmbiguousImplication)
}

func TestAddEntry_Dedup(t *testing.T) {
	txn, err := NewTransaction(date(2022, 4, 1), "Dedup")
	require.NoError(t, err)

	assert.True(t, txn.AddEntry(Entry{Account: expense, Amount: ptr(USD(dec("5")))}))
	assert.False(t, txn.AddEntry(Entry{Account: expense, Amount: ptr(USD(dec("5.00")))}))
	assert.True(t, txn.AddEntry(Entry{Account: expense, Amount: ptr(USD(dec("6")))}))
	assert.True(t, txn.AddEntry(Entry{Account: expense}))
	assert.False(t, txn.AddEntry(Entry{Account: expense}))
	assert.Len(t, txn.Entries(), 3)
}
