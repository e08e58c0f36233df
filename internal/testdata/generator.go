package testdata

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/jaskledger/internal/database/repository"
)

// Fixture holds the ids Seed created.
type Fixture struct {
	CheckingID     int64
	CardID         int64
	BrokerID       int64
	LedgerID       int64
	TransactionIDs []int64
}

// Seed creates a small household ledger: a debit, a credit and an invest
// account, default categories and twenty tagged transactions. The output is
// the same on every run.
func Seed(ctx context.Context, s *repository.Stores) (Fixture, error) {
	var fx Fixture
	rng := rand.New(rand.NewSource(42))

	var err error
	fx.CheckingID, err = s.Accounts.Create(ctx, repository.AccountInput{
		Name:         "Sample Checking",
		Variant:      repository.Debit{},
		Balance:      decimal.NewFromInt(2500),
		Currency:     "USD",
		CountInAsset: true,
	})
	if err != nil {
		return fx, err
	}
	fx.CardID, err = s.Accounts.Create(ctx, repository.AccountInput{
		Name: "Sample Card",
		Variant: repository.Credit{
			CreditLimit: decimal.NewNullDecimal(decimal.NewFromInt(5000)),
			Owed:        decimal.NewNullDecimal(decimal.RequireFromString("412.37")),
			BillingDate: "2024-01-01",
			DueDate:     "2024-01-21",
		},
		Balance:  decimal.RequireFromString("-412.37"),
		Currency: "USD",
	})
	if err != nil {
		return fx, err
	}
	fx.BrokerID, err = s.Accounts.Create(ctx, repository.AccountInput{
		Name: "Sample Brokerage",
		Variant: repository.Invest{
			AvgCost:  decimal.NewNullDecimal(decimal.RequireFromString("101.25")),
			Quantity: decimal.NewNullDecimal(decimal.NewFromInt(12)),
			TotalCap: decimal.NewNullDecimal(decimal.NewFromInt(1215)),
		},
		Balance:      decimal.NewFromInt(1215),
		Currency:     "USD",
		CountInAsset: true,
	})
	if err != nil {
		return fx, err
	}

	fx.LedgerID, err = s.Ledgers.Create(ctx, repository.Ledger{Name: "Household", BaseCurrency: "USD", BaseAccount: &fx.CheckingID})
	if err != nil {
		return fx, err
	}
	if err := seedCategories(ctx, s.Categories, fx.LedgerID); err != nil {
		return fx, err
	}

	type sample struct {
		note string
		tags []string
	}
	samples := []sample{
		{"UBER EATS* SUSHI", []string{"food"}},
		{"WOOLWORTHS", []string{"food", "groceries"}},
		{"SPOTIFY", []string{"subscription"}},
		{"METRO TRAIN", []string{"transport"}},
		{"SALARY ACME", []string{"salary"}},
	}
	accounts := []int64{fx.CheckingID, fx.CardID}
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		smp := samples[rng.Intn(len(samples))]
		amount := decimal.New(-int64(rng.Intn(20000)+500), -2)
		if smp.note == "SALARY ACME" {
			amount = amount.Neg().Mul(decimal.NewFromInt(10))
		}
		note := smp.note
		id, err := s.Transactions.Create(ctx, repository.TransactionInput{
			LedgerID:  fx.LedgerID,
			AccountID: accounts[rng.Intn(len(accounts))],
			Amount:    amount,
			Currency:  "USD",
			Date:      start.AddDate(0, 0, -rng.Intn(30)),
			Tags:      smp.tags,
			Note:      &note,
		})
		if err != nil {
			return fx, err
		}
		fx.TransactionIDs = append(fx.TransactionIDs, id)
	}
	return fx, nil
}

func seedCategories(ctx context.Context, repo *repository.CategoryRepo, ledgerID int64) error {
	cats := []repository.Category{
		{Name: "Shopping", Type: repository.CategoryExpense, Subcategories: []string{"Clothing", "Electronics", "Home & Garden", "General"}},
		{Name: "Food", Type: repository.CategoryExpense, Subcategories: []string{"Groceries", "Restaurants", "Coffee & Drinks", "Takeaway"}},
		{Name: "Fixed Costs", Type: repository.CategoryExpense, Subcategories: []string{"Rent / Mortgage", "Utilities", "Insurance", "Subscriptions", "Phone & Internet"}},
		{Name: "Investments & Savings", Type: repository.CategoryTransfer, Subcategories: []string{"Savings Transfer", "Investment Deposit", "Retirement"}},
		{Name: "Income", Type: repository.CategoryIncome, Subcategories: []string{"Salary", "Interest"}},
		{Name: "Misc", Type: repository.CategoryExpense, Subcategories: []string{"Transport", "Health", "Entertainment", "Gifts", "Fees & Charges", "Uncategorized"}},
	}
	for _, c := range cats {
		c.LedgerID = ledgerID
		if _, err := repo.Insert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
