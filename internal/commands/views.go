package commands

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/jaskledger/internal/database/repository"
)

// AccountView is the flat wire form of an account. Extension fields are set
// only for the account's own variant.
type AccountView struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	AccountType  string           `json:"account_type"`
	Balance      decimal.Decimal  `json:"balance"`
	Currency     string           `json:"currency"`
	Note         *string          `json:"note,omitempty"`
	CountInAsset bool             `json:"count_in_asset"`
	CreditLimit  *decimal.Decimal `json:"credit_limit,omitempty"`
	Owed         *decimal.Decimal `json:"owed,omitempty"`
	BillingDate  *string          `json:"billing_date,omitempty"`
	DueDate      *string          `json:"due_date,omitempty"`
	AvgCost      *decimal.Decimal `json:"avg_cost,omitempty"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	TotalCap     *decimal.Decimal `json:"total_cap,omitempty"`
}

func accountView(a repository.Account) AccountView {
	v := AccountView{
		ID:           a.ID,
		Name:         a.Name,
		Balance:      a.Balance,
		Currency:     a.Currency,
		Note:         a.Note,
		CountInAsset: a.CountInAsset,
	}
	if a.Variant != nil {
		v.AccountType = string(a.Variant.Type())
	}
	switch x := a.Variant.(type) {
	case repository.Credit:
		v.CreditLimit = decimalPtr(x.CreditLimit)
		v.Owed = decimalPtr(x.Owed)
		v.BillingDate = &x.BillingDate
		v.DueDate = &x.DueDate
	case repository.Invest:
		v.AvgCost = decimalPtr(x.AvgCost)
		v.Quantity = decimalPtr(x.Quantity)
		v.TotalCap = decimalPtr(x.TotalCap)
	}
	return v
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}

type LedgerView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	BaseCurrency string `json:"base_currency"`
	BaseAccount  *int64 `json:"base_account"`
	IsArchived   bool   `json:"is_archived"`
}

func ledgerView(l repository.Ledger) LedgerView {
	return LedgerView{ID: l.ID, Name: l.Name, BaseCurrency: l.BaseCurrency, BaseAccount: l.BaseAccount, IsArchived: l.IsArchived}
}

type CategoryView struct {
	ID            int64    `json:"id"`
	LedgerID      int64    `json:"ledger_id"`
	Name          string   `json:"name"`
	Icon          *string  `json:"icon"`
	Color         *string  `json:"color"`
	CategoryType  string   `json:"category_type"`
	Subcategories []string `json:"subcategories"`
}

func categoryView(c repository.Category) CategoryView {
	return CategoryView{
		ID:            c.ID,
		LedgerID:      c.LedgerID,
		Name:          c.Name,
		Icon:          c.Icon,
		Color:         c.Color,
		CategoryType:  string(c.Type),
		Subcategories: c.Subcategories,
	}
}

type TagView struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

func tagView(t repository.Tag) TagView {
	return TagView{ID: t.ID, Name: t.Name, Color: t.Color}
}

type TransactionView struct {
	ID        int64           `json:"id"`
	LedgerID  int64           `json:"ledger_id"`
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Date      time.Time       `json:"date"`
	Note      *string         `json:"note"`
	Tags      []string        `json:"tags"`
}

func transactionView(t repository.Transaction) TransactionView {
	return TransactionView{
		ID:        t.ID,
		LedgerID:  t.LedgerID,
		AccountID: t.AccountID,
		Amount:    t.Amount,
		Currency:  t.Currency,
		Date:      t.Date,
		Note:      t.Note,
		Tags:      t.Tags,
	}
}

type CurrencyView struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Created is returned by operations that insert a row.
type Created struct {
	ID int64 `json:"id"`
}

func mapSlice[T, V any](in []T, f func(T) V) []V {
	out := make([]V, 0, len(in))
	for _, x := range in {
		out = append(out, f(x))
	}
	return out
}
