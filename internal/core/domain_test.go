package core

import "testing"

func TestNewAccount(t *testing.T) {
	a, err := NewAccount("dass", "hash", RoleOwner)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if a.Role != RoleOwner {
		t.Fatalf("expected owner role, got %s", a.Role)
	}
	if len(a.Credits) != 0 || len(a.Debits) != 0 {
		t.Fatalf("expected empty ledger")
	}
	if a.Balance().Cents != 0 {
		t.Fatalf("expected zero balance, got %d", a.Balance().Cents)
	}

	if _, err := NewAccount("   ", "hash", RoleViewer); err != ErrEmptyUsername {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}

	// Unknown roles are normalized to viewer.
	a, err = NewAccount("ellen", "hash", Role("admin"))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if a.Role != RoleViewer {
		t.Fatalf("expected viewer role, got %s", a.Role)
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"Food", CategoryFood, true},
		{"  food ", CategoryFood, true},
		{"TRANSPORTATION", CategoryTransportation, true},
		{"Others", CategoryOthers, true},
		{"Groceries", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d: got (%q, %v), want %q", i, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d: expected error for %q", i, tc.in)
		}
	}
}

func TestCategoryIsValid(t *testing.T) {
	for _, cat := range Categories {
		if !cat.IsValid() {
			t.Fatalf("category %s should be valid", cat)
		}
	}
	if Category("Misc").IsValid() {
		t.Fatalf("unknown category should be invalid")
	}
}
