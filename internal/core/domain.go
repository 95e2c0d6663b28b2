package core

import (
	"errors"
	"strings"
	"time"
)

// TimeLayout is the second-precision timestamp format used everywhere a
// ledger entry date is persisted or displayed.
const TimeLayout = "2006-01-02 15:04:05"

// MonthLayout is the calendar-month key derived from entry timestamps.
const MonthLayout = "2006-01"

const (
	RoleOwner  Role = "owner"
	RoleViewer Role = "viewer"
)

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryHousing        Category = "Housing"
	CategoryUtilities      Category = "Utilities"
	CategoryEntertainment  Category = "Entertainment"
	CategoryShopping       Category = "Shopping"
	CategoryMedical        Category = "Medical"
	CategoryInvestment     Category = "Investment"
	CategoryOthers         Category = "Others"
)

type (
	// Role decides write access: the single owner account mutates its
	// ledger, every viewer account reads it.
	Role string

	Category string

	// Credit records money paid into the fund.
	Credit struct {
		Source      string
		Amount      Money
		Description string
		Date        time.Time
	}

	// Debit records an expense taken out of the fund.
	Debit struct {
		Category    Category
		Amount      Money
		Description string
		Date        time.Time
	}

	// Account couples credentials with the account's ledger. Credits and
	// debits are append-only, in chronological insertion order.
	Account struct {
		Username     string
		PasswordHash string
		Role         Role
		Credits      []Credit
		Debits       []Debit
	}
)

// Categories lists the fixed expense categories in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryHousing,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryShopping,
	CategoryMedical,
	CategoryInvestment,
	CategoryOthers,
}

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptySource     = errors.New("empty source name")
	ErrEmptyUsername   = errors.New("empty username")
)

// NewAccount creates an account with an empty ledger.
func NewAccount(username, passwordHash string, role Role) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if role != RoleOwner {
		role = RoleViewer
	}
	return &Account{Username: username, PasswordHash: passwordHash, Role: role}, nil
}

func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleViewer
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches a form value against the fixed category set,
// ignoring case and surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", ErrInvalidCategory
}

// Month returns the "YYYY-MM" key of the credit's timestamp.
func (c Credit) Month() string {
	return c.Date.Format(MonthLayout)
}

// Month returns the "YYYY-MM" key of the debit's timestamp.
func (d Debit) Month() string {
	return d.Date.Format(MonthLayout)
}
