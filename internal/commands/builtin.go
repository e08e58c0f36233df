package commands

import (
	"context"

	"github.com/jask/jaskledger/internal/database/repository"
	"github.com/jask/jaskledger/internal/service"
)

// Deps are the collaborators the built-in commands run against.
type Deps struct {
	Stores      *repository.Stores
	Maintenance *service.MaintenanceService
	Suggester   *service.TagSuggester
}

// New returns a registry holding every built-in command.
func New(d Deps) *Registry {
	return NewRegistry(Builtin(d))
}

// Builtin lists the commands exposed to the presentation layer.
func Builtin(d Deps) []Command {
	s := d.Stores
	return []Command{
		// accounts
		{ID: "create_account", Scope: "accounts", Description: "Create an account with its variant details",
			Execute: handle("create_account", func(ctx context.Context, p accountParams) (any, error) {
				in, err := p.input()
				if err != nil {
					return nil, err
				}
				id, err := s.Accounts.Create(ctx, in)
				if err != nil {
					return nil, err
				}
				return Created{ID: id}, nil
			})},
		{ID: "read_accounts", Scope: "accounts", Description: "List every account",
			Execute: handle("read_accounts", func(ctx context.Context, _ noParams) (any, error) {
				accounts, err := s.Accounts.List(ctx)
				if err != nil {
					return nil, err
				}
				return mapSlice(accounts, accountView), nil
			})},
		{ID: "get_account", Scope: "accounts", Description: "Show one account",
			Execute: handle("get_account", func(ctx context.Context, p idParams) (any, error) {
				a, err := s.Accounts.Get(ctx, p.ID)
				if err != nil {
					return nil, err
				}
				return accountView(*a), nil
			})},
		{ID: "update_account", Scope: "accounts", Description: "Replace an account and its variant details",
			Execute: handle("update_account", func(ctx context.Context, p updateAccountParams) (any, error) {
				in, err := p.input()
				if err != nil {
					return nil, err
				}
				return nil, s.Accounts.Update(ctx, p.ID, in)
			})},
		{ID: "delete_account", Scope: "accounts", Description: "Delete an account",
			Execute: handle("delete_account", func(ctx context.Context, p idParams) (any, error) {
				return nil, s.Accounts.Delete(ctx, p.ID)
			})},

		// ledgers
		{ID: "create_ledger", Scope: "ledgers", Description: "Create a ledger",
			Execute: handle("create_ledger", func(ctx context.Context, p ledgerParams) (any, error) {
				id, err := s.Ledgers.Create(ctx, p.ledger(0))
				if err != nil {
					return nil, err
				}
				return Created{ID: id}, nil
			})},
		{ID: "get_ledgers", Scope: "ledgers", Description: "List every ledger",
			Execute: handle("get_ledgers", func(ctx context.Context, _ noParams) (any, error) {
				ledgers, err := s.Ledgers.List(ctx)
				if err != nil {
					return nil, err
				}
				return mapSlice(ledgers, ledgerView), nil
			})},
		{ID: "get_ledger", Scope: "ledgers", Description: "Show one ledger",
			Execute: handle("get_ledger", func(ctx context.Context, p idParams) (any, error) {
				l, err := s.Ledgers.Get(ctx, p.ID)
				if err != nil {
					return nil, err
				}
				return ledgerView(*l), nil
			})},
		{ID: "update_ledger", Scope: "ledgers", Description: "Replace a ledger",
			Execute: handle("update_ledger", func(ctx context.Context, p updateLedgerParams) (any, error) {
				return nil, s.Ledgers.Update(ctx, p.ledger(p.ID))
			})},
		{ID: "delete_ledger", Scope: "ledgers", Description: "Delete a ledger with its categories and transactions",
			Execute: handle("delete_ledger", func(ctx context.Context, p idParams) (any, error) {
				return nil, s.Ledgers.Delete(ctx, p.ID)
			})},

		// categories
		{ID: "insert_category", Scope: "categories", Description: "Create a category in a ledger",
			Execute: handle("insert_category", func(ctx context.Context, p categoryParams) (any, error) {
				id, err := s.Categories.Insert(ctx, p.category(0))
				if err != nil {
					return nil, err
				}
				return Created{ID: id}, nil
			})},
		{ID: "get_categories_for_ledger", Scope: "categories", Description: "List the categories of a ledger",
			Execute: handle("get_categories_for_ledger", func(ctx context.Context, p ledgerIDParams) (any, error) {
				cats, err := s.Categories.ListForLedger(ctx, p.LedgerID)
				if err != nil {
					return nil, err
				}
				return mapSlice(cats, categoryView), nil
			})},
		{ID: "update_category", Scope: "categories", Description: "Replace a category",
			Execute: handle("update_category", func(ctx context.Context, p updateCategoryParams) (any, error) {
				return nil, s.Categories.Update(ctx, p.category(p.ID))
			})},
		{ID: "delete_category", Scope: "categories", Description: "Delete a category",
			Execute: handle("delete_category", func(ctx context.Context, p idParams) (any, error) {
				return nil, s.Categories.Delete(ctx, p.ID)
			})},

		// tags
		{ID: "create_tag", Scope: "tags", Description: "Create a tag or return the existing one",
			Execute: handle("create_tag", func(ctx context.Context, p tagParams) (any, error) {
				t, err := s.Tags.Create(ctx, p.Name, p.Color)
				if err != nil {
					return nil, err
				}
				return tagView(*t), nil
			})},
		{ID: "get_tags", Scope: "tags", Description: "List every tag",
			Execute: handle("get_tags", func(ctx context.Context, _ noParams) (any, error) {
				tags, err := s.Tags.List(ctx)
				if err != nil {
					return nil, err
				}
				return mapSlice(tags, tagView), nil
			})},
		{ID: "update_tag", Scope: "tags", Description: "Rename or recolor a tag",
			Execute: handle("update_tag", func(ctx context.Context, p updateTagParams) (any, error) {
				return nil, s.Tags.Update(ctx, p.ID, p.Name, p.Color)
			})},
		{ID: "delete_tag", Scope: "tags", Description: "Delete a tag and detach it from transactions",
			Execute: handle("delete_tag", func(ctx context.Context, p idParams) (any, error) {
				return nil, s.Tags.Delete(ctx, p.ID)
			})},
		{ID: "suggest_tags", Scope: "tags", Description: "Rank existing tags similar to a name",
			Execute: handle("suggest_tags", func(ctx context.Context, p suggestParams) (any, error) {
				return d.Suggester.Suggest(ctx, p.Query, p.Limit)
			})},

		// transactions
		{ID: "create_transaction", Scope: "transactions", Description: "Record a transaction with its tags",
			Execute: handle("create_transaction", func(ctx context.Context, p transactionParams) (any, error) {
				id, err := s.Transactions.Create(ctx, p.input())
				if err != nil {
					return nil, err
				}
				return Created{ID: id}, nil
			})},
		{ID: "read_transactions", Scope: "transactions", Description: "List transactions, optionally by ledger or account",
			Execute: handle("read_transactions", func(ctx context.Context, p transactionFilterParams) (any, error) {
				txns, err := s.Transactions.List(ctx, repository.TransactionFilters{LedgerID: p.LedgerID, AccountID: p.AccountID})
				if err != nil {
					return nil, err
				}
				return mapSlice(txns, transactionView), nil
			})},
		{ID: "get_transaction", Scope: "transactions", Description: "Show one transaction",
			Execute: handle("get_transaction", func(ctx context.Context, p idParams) (any, error) {
				t, err := s.Transactions.Get(ctx, p.ID)
				if err != nil {
					return nil, err
				}
				return transactionView(*t), nil
			})},
		{ID: "update_transaction", Scope: "transactions", Description: "Replace a transaction and its whole tag set",
			Execute: handle("update_transaction", func(ctx context.Context, p updateTransactionParams) (any, error) {
				return nil, s.Transactions.Update(ctx, p.ID, p.input())
			})},
		{ID: "delete_transaction", Scope: "transactions", Description: "Delete a transaction",
			Execute: handle("delete_transaction", func(ctx context.Context, p idParams) (any, error) {
				return nil, s.Transactions.Delete(ctx, p.ID)
			})},

		// reference data and maintenance
		{ID: "get_currencies", Scope: "currencies", Description: "List supported currencies",
			Execute: handle("get_currencies", func(ctx context.Context, _ noParams) (any, error) {
				cur, err := s.Currencies.List(ctx)
				if err != nil {
					return nil, err
				}
				return mapSlice(cur, func(c repository.Currency) CurrencyView {
					return CurrencyView{Code: c.Code, Name: c.Name, Symbol: c.Symbol}
				}), nil
			})},
		{ID: "get_currency", Scope: "currencies", Description: "Show one currency by code",
			Execute: handle("get_currency", func(ctx context.Context, p currencyParams) (any, error) {
				c, err := s.Currencies.Get(ctx, p.Code)
				if err != nil {
					return nil, err
				}
				return CurrencyView{Code: c.Code, Name: c.Name, Symbol: c.Symbol}, nil
			})},
		{ID: "check_integrity", Scope: "maintenance", Description: "Report orphaned extension rows and foreign key violations",
			Execute: handle("check_integrity", func(ctx context.Context, _ noParams) (any, error) {
				return d.Maintenance.Check(ctx)
			})},
		{ID: "reset_data", Scope: "maintenance", Description: "Wipe all user data, keeping currencies",
			Execute: handle("reset_data", func(ctx context.Context, _ resetParams) (any, error) {
				return nil, d.Maintenance.Reset(ctx)
			})},
	}
}
