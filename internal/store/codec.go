package store

import (
	"fmt"
	"log/slog"
	"time"

	"housefund/internal/core"
)

// Persisted JSON layout, one record per username:
//
//	{"<username>": {"password": "...", "role": "...", "balance": 12.3,
//	  "money_added": [{"from_user", "amount", "description", "date"}],
//	  "expenses":    [{"category", "amount", "description", "date"}]}}
//
// The balance field is a cache kept for compatibility with older files;
// the derived fold of the two lists always wins.
type accountRecord struct {
	Password   string         `json:"password"`
	Role       string         `json:"role,omitempty"`
	Balance    float64        `json:"balance"`
	MoneyAdded []creditRecord `json:"money_added"`
	Expenses   []debitRecord  `json:"expenses"`
}

type creditRecord struct {
	FromUser    string  `json:"from_user"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type debitRecord struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func encodeAccounts(accounts Accounts) map[string]accountRecord {
	out := make(map[string]accountRecord, len(accounts))
	for username, acct := range accounts {
		rec := accountRecord{
			Password:   acct.PasswordHash,
			Role:       string(acct.Role),
			Balance:    acct.Balance().Float(),
			MoneyAdded: make([]creditRecord, 0, len(acct.Credits)),
			Expenses:   make([]debitRecord, 0, len(acct.Debits)),
		}
		for _, c := range acct.Credits {
			rec.MoneyAdded = append(rec.MoneyAdded, creditRecord{
				FromUser:    c.Source,
				Amount:      c.Amount.Float(),
				Description: c.Description,
				Date:        c.Date.Format(core.TimeLayout),
			})
		}
		for _, d := range acct.Debits {
			rec.Expenses = append(rec.Expenses, debitRecord{
				Category:    string(d.Category),
				Amount:      d.Amount.Float(),
				Description: d.Description,
				Date:        d.Date.Format(core.TimeLayout),
			})
		}
		out[username] = rec
	}
	return out
}

func decodeAccounts(records map[string]accountRecord) (Accounts, error) {
	out := make(Accounts, len(records))
	for username, rec := range records {
		role := core.Role(rec.Role)
		if !role.IsValid() {
			role = core.RoleViewer
		}
		acct, err := core.NewAccount(username, rec.Password, role)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", username, err)
		}
		for i, c := range rec.MoneyAdded {
			date, err := time.Parse(core.TimeLayout, c.Date)
			if err != nil {
				return nil, fmt.Errorf("account %q: credit %d: bad date %q: %w", username, i, c.Date, err)
			}
			acct.Credits = append(acct.Credits, core.Credit{
				Source:      c.FromUser,
				Amount:      core.MoneyFromFloat(c.Amount),
				Description: c.Description,
				Date:        date,
			})
		}
		for i, d := range rec.Expenses {
			date, err := time.Parse(core.TimeLayout, d.Date)
			if err != nil {
				return nil, fmt.Errorf("account %q: expense %d: bad date %q: %w", username, i, d.Date, err)
			}
			acct.Debits = append(acct.Debits, core.Debit{
				Category:    core.Category(d.Category),
				Amount:      core.MoneyFromFloat(d.Amount),
				Description: d.Description,
				Date:        date,
			})
		}
		if derived := acct.Balance(); core.MoneyFromFloat(rec.Balance) != derived {
			slog.Warn("Stored balance drifted from ledger, using derived value",
				"username", username,
				"stored", rec.Balance,
				"derived", derived.Float())
		}
		out[username] = acct
	}
	return out, nil
}
