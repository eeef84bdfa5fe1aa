package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsBalanceSheet reports whether the type carries its balance across periods.
// Revenue and Expense are temporary accounts zeroed at period close.
func (t AccountType) IsBalanceSheet() bool {
	switch t {
	case Asset, Liability, Equity:
		return true
	}
	return false
}

// NormalSide returns the side on which an account type's balance increases.
// Asset/Expense are debit-normal; Liability/Equity/Revenue are credit-normal.
func NormalSide(t AccountType) Side {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// Account represents a financial account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID    string      `json:"accountID"`    // Primary key (UUID)
	Code         string      `json:"code"`         // Unique within tenant, user-facing
	Name         string      `json:"name"`         // User-defined name
	AccountType  AccountType `json:"accountType"`  // ASSET, LIABILITY, etc.
	CurrencyCode string      `json:"currencyCode"` // Currency every line against this account must carry
	Description  string      `json:"description"`  // Nullable user description
	IsActive     bool        `json:"isActive"`     // Inactive accounts reject postings
	AuditFields
}

// NormalSide returns this account's normal balance side.
func (a Account) NormalSide() Side {
	return NormalSide(a.AccountType)
}
