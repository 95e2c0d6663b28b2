package core

import (
	"testing"
	"time"
)

func testAccount(t *testing.T) *Account {
	t.Helper()
	a, err := NewAccount("dass", "hash", RoleOwner)
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	return a
}

func at(day int) time.Time {
	return time.Date(2025, 3, day, 10, 30, 0, 0, time.UTC)
}

func TestAddCreditRejectsInvalid(t *testing.T) {
	a := testAccount(t)
	cases := []struct {
		source string
		cents  int64
	}{
		{"Ellen", 0},
		{"Ellen", -500},
		{"", 100},
		{"   ", 100},
	}
	for i, tc := range cases {
		if err := a.AddCredit(tc.source, Money{Cents: tc.cents}, "x", at(1)); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
	if len(a.Credits) != 0 || a.Balance().Cents != 0 {
		t.Fatalf("rejected credit must not mutate the ledger")
	}
}

func TestAddDebitRejectsInvalid(t *testing.T) {
	a := testAccount(t)
	if err := a.AddDebit(CategoryFood, Money{Cents: 0}, "x", at(1)); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := a.AddDebit(Category("Misc"), Money{Cents: 100}, "x", at(1)); err != ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if len(a.Debits) != 0 || a.Balance().Cents != 0 {
		t.Fatalf("rejected debit must not mutate the ledger")
	}
}

func TestBalanceEqualsFold(t *testing.T) {
	a := testAccount(t)
	entries := []struct {
		credit bool
		cents  int64
	}{
		{true, 10000}, {true, 2550}, {false, 3000}, {false, 999}, {true, 1}, {false, 20000},
	}
	var want int64
	for i, e := range entries {
		if e.credit {
			if err := a.AddCredit("Ellen", Money{Cents: e.cents}, "pay-in", at(i+1)); err != nil {
				t.Fatalf("credit %d: %v", i, err)
			}
			want += e.cents
		} else {
			if err := a.AddDebit(CategoryFood, Money{Cents: e.cents}, "spend", at(i+1)); err != nil {
				t.Fatalf("debit %d: %v", i, err)
			}
			want -= e.cents
		}
	}
	if got := a.Balance().Cents; got != want {
		t.Fatalf("balance = %d, want %d", got, want)
	}
}

// Mirrors the canonical flow: a 100 credit, a 30 debit, then a 100 debit
// that pushes the balance to -30 but still succeeds.
func TestDebitMayGoNegative(t *testing.T) {
	a := testAccount(t)
	if err := a.AddCredit("Bob", Money{Cents: 10000}, "gift", at(1)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got := a.Balance().Cents; got != 10000 {
		t.Fatalf("balance after credit = %d, want 10000", got)
	}
	if err := a.AddDebit(CategoryFood, Money{Cents: 3000}, "lunch", at(2)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got := a.Balance().Cents; got != 7000 {
		t.Fatalf("balance after lunch = %d, want 7000", got)
	}
	if err := a.AddDebit(CategoryShopping, Money{Cents: 10000}, "shoes", at(3)); err != nil {
		t.Fatalf("overdraft debit should succeed, got %v", err)
	}
	if got := a.Balance().Cents; got != -3000 {
		t.Fatalf("balance after shoes = %d, want -3000", got)
	}
	if !a.Balance().Negative() {
		t.Fatalf("balance should report negative")
	}
}

func TestFilterCredits(t *testing.T) {
	a := testAccount(t)
	for i, source := range []string{"Ellen", "Arul", "Ellen", "Joy"} {
		if err := a.AddCredit(source, Money{Cents: int64(100 * (i + 1))}, "", at(i+1)); err != nil {
			t.Fatalf("credit %d: %v", i, err)
		}
	}
	all := a.FilterCredits("")
	if len(all) != 4 {
		t.Fatalf("expected 4 credits, got %d", len(all))
	}
	ellen := a.FilterCredits("Ellen")
	if len(ellen) != 2 {
		t.Fatalf("expected 2 Ellen credits, got %d", len(ellen))
	}
	if ellen[0].Amount.Cents != 100 || ellen[1].Amount.Cents != 300 {
		t.Fatalf("filter must preserve insertion order: %+v", ellen)
	}
	if len(a.FilterCredits("Nobody")) != 0 {
		t.Fatalf("unknown source should match nothing")
	}
}

func TestFilterDebits(t *testing.T) {
	a := testAccount(t)
	add := func(cat Category, cents int64, when time.Time) {
		t.Helper()
		if err := a.AddDebit(cat, Money{Cents: cents}, "", when); err != nil {
			t.Fatalf("debit: %v", err)
		}
	}
	march := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	add(CategoryFood, 100, march)
	add(CategoryMedical, 200, march)
	add(CategoryFood, 300, april)
	add(CategoryFood, 400, april)

	food := a.FilterDebits(CategoryFood, "")
	if len(food) != 3 {
		t.Fatalf("expected 3 Food debits, got %d", len(food))
	}
	if food[0].Amount.Cents != 100 || food[1].Amount.Cents != 300 || food[2].Amount.Cents != 400 {
		t.Fatalf("category filter must preserve order: %+v", food)
	}

	aprilOnly := a.FilterDebits("", "2025-04")
	if len(aprilOnly) != 2 {
		t.Fatalf("expected 2 April debits, got %d", len(aprilOnly))
	}

	both := a.FilterDebits(CategoryFood, "2025-03")
	if len(both) != 1 || both[0].Amount.Cents != 100 {
		t.Fatalf("combined filter mismatch: %+v", both)
	}

	if got := a.FilterDebits(CategoryHousing, ""); len(got) != 0 {
		t.Fatalf("expected no Housing debits, got %d", len(got))
	}
}

func TestSumByCategory(t *testing.T) {
	a := testAccount(t)
	for _, e := range []struct {
		cat   Category
		cents int64
	}{
		{CategoryFood, 100}, {CategoryShopping, 250}, {CategoryFood, 400}, {CategoryOthers, 50},
	} {
		if err := a.AddDebit(e.cat, Money{Cents: e.cents}, "", at(1)); err != nil {
			t.Fatalf("debit: %v", err)
		}
	}
	got := SumByCategory(a.Debits)
	want := []CategoryAmount{
		{CategoryFood, Money{Cents: 500}},
		{CategoryShopping, Money{Cents: 250}},
		{CategoryOthers, Money{Cents: 50}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSumByMonth(t *testing.T) {
	a := testAccount(t)
	add := func(cents int64, when time.Time) {
		t.Helper()
		if err := a.AddDebit(CategoryFood, Money{Cents: cents}, "", when); err != nil {
			t.Fatalf("debit: %v", err)
		}
	}
	add(100, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	add(200, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	add(300, time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC))

	got := SumByMonth(a.Debits)
	want := []MonthAmount{
		{"2025-02", Money{Cents: 200}},
		{"2025-04", Money{Cents: 400}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d months, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDistinctHelpers(t *testing.T) {
	a := testAccount(t)
	_ = a.AddCredit("Ellen", Money{Cents: 100}, "", at(1))
	_ = a.AddCredit("Arul", Money{Cents: 100}, "", at(2))
	_ = a.AddCredit("Ellen", Money{Cents: 100}, "", at(3))
	sources := a.CreditSources()
	if len(sources) != 2 || sources[0] != "Ellen" || sources[1] != "Arul" {
		t.Fatalf("sources = %v", sources)
	}

	_ = a.AddDebit(CategoryFood, Money{Cents: 100}, "", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	_ = a.AddDebit(CategoryFood, Money{Cents: 100}, "", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	_ = a.AddDebit(CategoryFood, Money{Cents: 100}, "", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	months := a.DebitMonths()
	if len(months) != 2 || months[0] != "2025-03" || months[1] != "2025-01" {
		t.Fatalf("months = %v", months)
	}
}
