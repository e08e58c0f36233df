package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/jaskledger/internal/database/repository"
)

// Date accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (midnight UTC).
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("date %q is neither RFC 3339 nor YYYY-MM-DD", s)
}

// checker is implemented by params with requirements beyond their JSON shape.
type checker interface {
	check() error
}

// handle adapts a typed handler to Command.Execute. Arguments are decoded
// strictly: unknown fields are rejected.
func handle[P any](id string, fn func(ctx context.Context, p P) (any, error)) func(context.Context, json.RawMessage) (any, error) {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p P
		if len(bytes.TrimSpace(raw)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&p); err != nil {
				return nil, &BadRequestError{Command: id, Err: err}
			}
		}
		if c, ok := any(&p).(checker); ok {
			if err := c.check(); err != nil {
				return nil, &BadRequestError{Command: id, Err: err}
			}
		}
		return fn(ctx, p)
	}
}

type noParams struct{}

type idParams struct {
	ID int64 `json:"id"`
}

func (p *idParams) check() error { return requireID(p.ID) }

func requireID(id int64) error {
	if id <= 0 {
		return errors.New("id must be a positive integer")
	}
	return nil
}

type accountParams struct {
	Name         string           `json:"name"`
	AccountType  string           `json:"account_type"`
	Balance      decimal.Decimal  `json:"balance"`
	Currency     string           `json:"currency"`
	Note         *string          `json:"note"`
	CountInAsset *bool            `json:"count_in_asset"`
	CreditLimit  *decimal.Decimal `json:"credit_limit"`
	Owed         *decimal.Decimal `json:"owed"`
	BillingDate  *string          `json:"billing_date"`
	DueDate      *string          `json:"due_date"`
	AvgCost      *decimal.Decimal `json:"avg_cost"`
	Quantity     *decimal.Decimal `json:"quantity"`
	TotalCap     *decimal.Decimal `json:"total_cap"`
}

// input builds the store input. count_in_asset defaults to true.
func (p accountParams) input() (repository.AccountInput, error) {
	v, err := repository.NewVariant(p.AccountType, repository.VariantFields{
		CreditLimit: p.CreditLimit,
		Owed:        p.Owed,
		BillingDate: p.BillingDate,
		DueDate:     p.DueDate,
		AvgCost:     p.AvgCost,
		Quantity:    p.Quantity,
		TotalCap:    p.TotalCap,
	})
	if err != nil {
		return repository.AccountInput{}, err
	}
	count := true
	if p.CountInAsset != nil {
		count = *p.CountInAsset
	}
	return repository.AccountInput{
		Name:         p.Name,
		Variant:      v,
		Balance:      p.Balance,
		Currency:     strings.ToUpper(strings.TrimSpace(p.Currency)),
		Note:         p.Note,
		CountInAsset: count,
	}, nil
}

type updateAccountParams struct {
	ID int64 `json:"id"`
	accountParams
}

func (p *updateAccountParams) check() error { return requireID(p.ID) }

type ledgerParams struct {
	Name         string `json:"name"`
	BaseCurrency string `json:"base_currency"`
	BaseAccount  *int64 `json:"base_account"`
	IsArchived   bool   `json:"is_archived"`
}

func (p ledgerParams) ledger(id int64) repository.Ledger {
	return repository.Ledger{
		ID:           id,
		Name:         p.Name,
		BaseCurrency: strings.ToUpper(strings.TrimSpace(p.BaseCurrency)),
		BaseAccount:  p.BaseAccount,
		IsArchived:   p.IsArchived,
	}
}

type updateLedgerParams struct {
	ID int64 `json:"id"`
	ledgerParams
}

func (p *updateLedgerParams) check() error { return requireID(p.ID) }

type categoryParams struct {
	LedgerID      int64    `json:"ledger_id"`
	Name          string   `json:"name"`
	Icon          *string  `json:"icon"`
	Color         *string  `json:"color"`
	CategoryType  string   `json:"category_type"`
	Subcategories []string `json:"subcategories"`
}

func (p categoryParams) category(id int64) repository.Category {
	return repository.Category{
		ID:            id,
		LedgerID:      p.LedgerID,
		Name:          p.Name,
		Icon:          p.Icon,
		Color:         p.Color,
		Type:          repository.CategoryType(strings.ToLower(strings.TrimSpace(p.CategoryType))),
		Subcategories: p.Subcategories,
	}
}

type updateCategoryParams struct {
	ID int64 `json:"id"`
	categoryParams
}

func (p *updateCategoryParams) check() error { return requireID(p.ID) }

type ledgerIDParams struct {
	LedgerID int64 `json:"ledger_id"`
}

func (p *ledgerIDParams) check() error {
	if p.LedgerID <= 0 {
		return errors.New("ledger_id must be a positive integer")
	}
	return nil
}

type tagParams struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type updateTagParams struct {
	ID int64 `json:"id"`
	tagParams
}

func (p *updateTagParams) check() error { return requireID(p.ID) }

type transactionParams struct {
	LedgerID  int64           `json:"ledger_id"`
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Date      Date            `json:"date"`
	Tags      []string        `json:"tags"`
	Note      *string         `json:"note"`
}

func (p transactionParams) input() repository.TransactionInput {
	return repository.TransactionInput{
		LedgerID:  p.LedgerID,
		AccountID: p.AccountID,
		Amount:    p.Amount,
		Currency:  strings.ToUpper(strings.TrimSpace(p.Currency)),
		Date:      p.Date.Time,
		Tags:      p.Tags,
		Note:      p.Note,
	}
}

type updateTransactionParams struct {
	ID int64 `json:"id"`
	transactionParams
}

func (p *updateTransactionParams) check() error { return requireID(p.ID) }

type transactionFilterParams struct {
	LedgerID  int64 `json:"ledger_id"`
	AccountID int64 `json:"account_id"`
}

type currencyParams struct {
	Code string `json:"code"`
}

type suggestParams struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type resetParams struct {
	Confirm bool `json:"confirm"`
}

func (p *resetParams) check() error {
	if !p.Confirm {
		return errors.New(`reset_data wipes all user data; pass {"confirm": true}`)
	}
	return nil
}
