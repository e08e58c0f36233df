package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a currency row. Currencies are reference data.
type Currency struct {
	Code   string
	Name   string
	Symbol string
}

// Account represents an account base row together with its variant.
type Account struct {
	ID           int64
	Name         string
	Variant      Variant
	Balance      decimal.Decimal
	Currency     string
	Note         *string
	CountInAsset bool
}

// AccountInput carries the caller-supplied fields for create and update.
type AccountInput struct {
	Name         string
	Variant      Variant
	Balance      decimal.Decimal
	Currency     string
	Note         *string
	CountInAsset bool
}

// Ledger represents a ledger row.
type Ledger struct {
	ID           int64
	Name         string
	BaseCurrency string
	BaseAccount  *int64
	IsArchived   bool
}

// CategoryType classifies a category.
type CategoryType string

const (
	CategoryExpense  CategoryType = "expense"
	CategoryIncome   CategoryType = "income"
	CategoryTransfer CategoryType = "transfer"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryExpense, CategoryIncome, CategoryTransfer:
		return true
	}
	return false
}

// Category represents a category row. Subcategories are an ordered list
// embedded in the row and have no identity of their own.
type Category struct {
	ID            int64
	LedgerID      int64
	Name          string
	Icon          *string
	Color         *string
	Type          CategoryType
	Subcategories []string
}

// Tag represents a tag row.
type Tag struct {
	ID    int64
	Name  string
	Color *string
}

// Transaction represents a transaction row with its tag names.
type Transaction struct {
	ID        int64
	LedgerID  int64
	AccountID int64
	Amount    decimal.Decimal
	Currency  string
	Date      time.Time
	Note      *string
	Tags      []string
}

// TransactionInput carries the caller-supplied fields for create and update.
type TransactionInput struct {
	LedgerID  int64
	AccountID int64
	Amount    decimal.Decimal
	Currency  string
	Date      time.Time
	Tags      []string
	Note      *string
}

// TransactionFilters defines list filters. Zero values mean no filter.
type TransactionFilters struct {
	LedgerID  int64
	AccountID int64
}
