package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementRow is one parsed line of a card or bank statement.
type StatementRow struct {
	Line        int // 1-based line in the source file, 0 if unknown
	Status      string
	PostDate    time.Time
	Description string
	Debit       decimal.NullDecimal // charge, positive
	Credit      decimal.NullDecimal // payment or adjustment, usually negative
}
