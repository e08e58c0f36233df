package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the persisted discriminator of an account variant.
type AccountType string

const (
	AccountDebit  AccountType = "debit"
	AccountMember AccountType = "member"
	AccountCredit AccountType = "credit"
	AccountInvest AccountType = "invest"
)

// Variant is the closed set of account kinds: Debit, Member, Credit and
// Invest. Credit and Invest carry an extension record.
type Variant interface {
	Type() AccountType
	isVariant()
}

// Debit is a plain cash or bank account.
type Debit struct{}

// Member is a membership or stored-value account.
type Member struct{}

// Credit is a credit line. All four fields are required.
type Credit struct {
	CreditLimit decimal.NullDecimal
	Owed        decimal.NullDecimal
	BillingDate string
	DueDate     string
}

// Invest is a holding. All three fields are required.
type Invest struct {
	AvgCost  decimal.NullDecimal
	Quantity decimal.NullDecimal
	TotalCap decimal.NullDecimal
}

func (Debit) Type() AccountType  { return AccountDebit }
func (Member) Type() AccountType { return AccountMember }
func (Credit) Type() AccountType { return AccountCredit }
func (Invest) Type() AccountType { return AccountInvest }

func (Debit) isVariant()  {}
func (Member) isVariant() {}
func (Credit) isVariant() {}
func (Invest) isVariant() {}

// dateLayout is the stored form of credit billing and due dates.
const dateLayout = "2006-01-02"

// VariantFields is the flat, optional form in which variant payloads arrive
// from callers that cannot express a sum type.
type VariantFields struct {
	CreditLimit *decimal.Decimal
	Owed        *decimal.Decimal
	BillingDate *string
	DueDate     *string
	AvgCost     *decimal.Decimal
	Quantity    *decimal.Decimal
	TotalCap    *decimal.Decimal
}

// NewVariant builds the variant named by accountType from flat fields.
// Missing required fields are not rejected here; validateVariant does that
// at write time so every entry point shares one rule.
func NewVariant(accountType string, f VariantFields) (Variant, error) {
	switch AccountType(accountType) {
	case AccountDebit:
		return Debit{}, nil
	case AccountMember:
		return Member{}, nil
	case AccountCredit:
		c := Credit{CreditLimit: nullDecimal(f.CreditLimit), Owed: nullDecimal(f.Owed)}
		if f.BillingDate != nil {
			c.BillingDate = *f.BillingDate
		}
		if f.DueDate != nil {
			c.DueDate = *f.DueDate
		}
		return c, nil
	case AccountInvest:
		return Invest{
			AvgCost:  nullDecimal(f.AvgCost),
			Quantity: nullDecimal(f.Quantity),
			TotalCap: nullDecimal(f.TotalCap),
		}, nil
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("unknown account type %q", accountType)}
	}
}

func validateVariant(op string, v Variant) error {
	var missing []string
	switch v := v.(type) {
	case Debit, Member:
		return nil
	case Credit:
		if !v.CreditLimit.Valid {
			missing = append(missing, "credit_limit")
		}
		if !v.Owed.Valid {
			missing = append(missing, "owed")
		}
		if v.BillingDate == "" {
			missing = append(missing, "billing_date")
		}
		if v.DueDate == "" {
			missing = append(missing, "due_date")
		}
		if len(missing) > 0 {
			return &ValidationError{Op: op, Fields: missing, Message: "missing credit account details"}
		}
		var malformed []string
		if _, err := time.Parse(dateLayout, v.BillingDate); err != nil {
			malformed = append(malformed, "billing_date")
		}
		if _, err := time.Parse(dateLayout, v.DueDate); err != nil {
			malformed = append(malformed, "due_date")
		}
		if len(malformed) > 0 {
			return &ValidationError{Op: op, Fields: malformed, Message: "credit dates must be YYYY-MM-DD"}
		}
		return nil
	case Invest:
		if !v.AvgCost.Valid {
			missing = append(missing, "avg_cost")
		}
		if !v.Quantity.Valid {
			missing = append(missing, "quantity")
		}
		if !v.TotalCap.Valid {
			missing = append(missing, "total_cap")
		}
		if len(missing) > 0 {
			return &ValidationError{Op: op, Fields: missing, Message: "missing invest account details"}
		}
		return nil
	case nil:
		return &ValidationError{Op: op, Message: "account variant is required"}
	default:
		return &ValidationError{Op: op, Message: fmt.Sprintf("unsupported account variant %T", v)}
	}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// fixed renders a monetary value with four fractional digits, the persisted
// precision of every amount column.
func fixed(d decimal.Decimal) string {
	return d.StringFixed(4)
}
