package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jask/jaskledger/internal/database/repository"
)

type accountRow struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"account_type"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
	Detail   string `json:"detail,omitempty"`
}

// NewAccountsCommand prints accounts with balances formatted for their
// currency.
func NewAccountsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with formatted balances",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := opts.Stores(cmd.Context())
			if err != nil {
				return err
			}
			accounts, err := stores.Accounts.List(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "list accounts", err)
			}
			rows := make([]accountRow, 0, len(accounts))
			for _, a := range accounts {
				rows = append(rows, accountRow{
					ID:       a.ID,
					Name:     a.Name,
					Type:     string(a.Variant.Type()),
					Balance:  FormatAmount(a.Balance, a.Currency),
					Currency: a.Currency,
					Detail:   variantDetail(a),
				})
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tBALANCE\tDETAIL")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Type, r.Balance, r.Detail)
			}
			return tw.Flush()
		},
	}
}

func variantDetail(a repository.Account) string {
	switch v := a.Variant.(type) {
	case repository.Credit:
		return fmt.Sprintf("owed %s of %s, due %s",
			FormatAmount(v.Owed.Decimal, a.Currency), FormatAmount(v.CreditLimit.Decimal, a.Currency), v.DueDate)
	case repository.Invest:
		return fmt.Sprintf("%s @ %s", v.Quantity.Decimal.String(), FormatAmount(v.AvgCost.Decimal, a.Currency))
	default:
		return ""
	}
}

// FormatAmount renders amount in code's display convention, rounded to the
// currency's minor unit. Codes unknown to the ISO table fall back to
// "<amount> <code>".
func FormatAmount(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}
