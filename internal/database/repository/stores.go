package repository

import "database/sql"

// Stores bundles every store built on one storage handle. The tag and
// transaction stores share a single resolver.
type Stores struct {
	Accounts     *AccountRepo
	Transactions *TransactionRepo
	Tags         *TagRepo
	Categories   *CategoryRepo
	Ledgers      *LedgerRepo
	Currencies   *CurrencyRepo
}

func NewStores(db *sql.DB, defaultTagColor string) *Stores {
	resolver := &TagResolver{DefaultColor: defaultTagColor}
	return &Stores{
		Accounts:     NewAccountRepo(db),
		Transactions: NewTransactionRepo(db, resolver),
		Tags:         NewTagRepo(db, resolver),
		Categories:   NewCategoryRepo(db),
		Ledgers:      NewLedgerRepo(db),
		Currencies:   NewCurrencyRepo(db),
	}
}
