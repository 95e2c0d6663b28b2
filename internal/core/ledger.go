package core

import (
	"sort"
	"strings"
	"time"
)

// CategoryAmount is a per-category total, for summaries and pie charts.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthAmount is a per-month total keyed by "YYYY-MM", for bar charts.
type MonthAmount struct {
	Month  string
	Amount Money
}

// AddCredit appends a credit entry and leaves the ledger untouched when
// the amount or source is invalid.
func (a *Account) AddCredit(source string, amount Money, description string, now time.Time) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return ErrEmptySource
	}
	a.Credits = append(a.Credits, Credit{
		Source:      source,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Date:        now.Truncate(time.Second),
	})
	return nil
}

// AddDebit appends an expense entry. A debit always succeeds for a valid
// positive amount, even when it drives the balance negative; warning the
// user about that is the caller's job.
func (a *Account) AddDebit(category Category, amount Money, description string, now time.Time) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	if !category.IsValid() {
		return ErrInvalidCategory
	}
	a.Debits = append(a.Debits, Debit{
		Category:    category,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Date:        now.Truncate(time.Second),
	})
	return nil
}

// Balance folds the two entry lists: sum of credits minus sum of debits.
// It is always derived, never cached, so it cannot drift.
func (a *Account) Balance() Money {
	var total Money
	for _, c := range a.Credits {
		total = total.Add(c.Amount)
	}
	for _, d := range a.Debits {
		total = total.Sub(d.Amount)
	}
	return total
}

// FilterCredits returns credits from the given source, or all credits
// when source is empty. Order is preserved.
func (a *Account) FilterCredits(source string) []Credit {
	if source == "" {
		return append([]Credit(nil), a.Credits...)
	}
	var out []Credit
	for _, c := range a.Credits {
		if c.Source == source {
			out = append(out, c)
		}
	}
	return out
}

// FilterDebits returns debits matching the category and/or month
// ("YYYY-MM"), both optional, combined with AND semantics. Order is
// preserved.
func (a *Account) FilterDebits(category Category, month string) []Debit {
	var out []Debit
	for _, d := range a.Debits {
		if category != "" && d.Category != category {
			continue
		}
		if month != "" && d.Month() != month {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SumByCategory totals debit amounts per category, in the fixed category
// display order. Categories without entries are omitted.
func SumByCategory(debits []Debit) []CategoryAmount {
	totals := make(map[Category]Money, len(Categories))
	for _, d := range debits {
		totals[d.Category] = totals[d.Category].Add(d.Amount)
	}
	out := make([]CategoryAmount, 0, len(totals))
	for _, cat := range Categories {
		if amount, ok := totals[cat]; ok {
			out = append(out, CategoryAmount{Category: cat, Amount: amount})
		}
	}
	return out
}

// SumByMonth totals debit amounts per calendar month, one entry per
// distinct month present, in ascending month order.
func SumByMonth(debits []Debit) []MonthAmount {
	totals := make(map[string]Money)
	for _, d := range debits {
		key := d.Month()
		totals[key] = totals[key].Add(d.Amount)
	}
	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Strings(months)
	out := make([]MonthAmount, 0, len(months))
	for _, m := range months {
		out = append(out, MonthAmount{Month: m, Amount: totals[m]})
	}
	return out
}

// CreditSources returns the distinct credit sources in first-seen order,
// for filter dropdowns.
func (a *Account) CreditSources() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range a.Credits {
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		out = append(out, c.Source)
	}
	return out
}

// DebitMonths returns the distinct debit months, newest first, for
// filter dropdowns.
func (a *Account) DebitMonths() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range a.Debits {
		key := d.Month()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}
