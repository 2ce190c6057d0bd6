package journal

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plutus-ledger/plutus/internal/model"
)

func TestWritePostings(t *testing.T) {
	pizza := charge(t, 11, `PIZZA "N" WINGS, INC`, "20")
	pizza.Status = model.StatusNone

	var buf bytes.Buffer
	require.NoError(t, WritePostings(&buf, []*model.Transaction{charge(t, 10, "BBQ SHACK", "12.50"), pizza}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"date", "status", "description", "account", "amount", "unit"}, records[0])
	assert.Equal(t, []string{"2024-01-10", "cleared", "BBQ SHACK", "Liabilities:CC:DoubleCash", "-12.50", "USD"}, records[1])
	assert.Equal(t, []string{"2024-01-10", "cleared", "BBQ SHACK", "Expenses:Dining", "12.50", "USD"}, records[2])
	assert.Equal(t, []string{"2024-01-11", "", `PIZZA "N" WINGS, INC`, "Expenses:Dining", "20.00", "USD"}, records[4])
}

func TestMarshalPosting(t *testing.T) {
	txn, err := model.NewTransaction(date(2024, 2, 1), "TRANSFER")
	require.NoError(t, err)

	pending := model.Entry{Account: model.MustParseAccount("Assets:Savings"), Status: model.StatusPending, Amount: usd("5")}
	assert.Equal(t, []string{"2024-02-01", "pending", "TRANSFER", "Assets:Savings", "5.00", "USD"}, MarshalPosting(txn, pending))

	implied := model.Entry{Account: model.MustParseAccount("Assets:Checking")}
	assert.Equal(t, []string{"2024-02-01", "", "TRANSFER", "Assets:Checking", "", ""}, MarshalPosting(txn, implied))
}
