package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"housefund/internal/core"
	"housefund/internal/services"
)

type entryRow struct {
	Label       string
	Amount      string
	Description string
	Date        string
}

type dashboardPage struct {
	Username   string
	IsOwner    bool
	Balance    string
	Negative   bool
	Categories []core.Category
	Sources    []string
	Months     []string
	Credits    []entryRow
	Debits     []entryRow
}

func creditRows(credits []core.Credit) []entryRow {
	rows := make([]entryRow, 0, len(credits))
	for _, c := range credits {
		rows = append(rows, entryRow{
			Label:       c.Source,
			Amount:      c.Amount.String(),
			Description: c.Description,
			Date:        c.Date.Format(core.TimeLayout),
		})
	}
	return rows
}

func debitRows(debits []core.Debit) []entryRow {
	rows := make([]entryRow, 0, len(debits))
	for _, d := range debits {
		rows = append(rows, entryRow{
			Label:       string(d.Category),
			Amount:      d.Amount.String(),
			Description: d.Description,
			Date:        d.Date.Format(core.TimeLayout),
		})
	}
	return rows
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	username := sessionUser(r)
	acct, err := s.accounts.Account(r.Context(), username)
	if err != nil {
		// Account deleted underneath an open session
		s.clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	page := dashboardPage{
		Username:   acct.Username,
		IsOwner:    acct.Role == core.RoleOwner,
		Categories: core.Categories,
	}

	ledger, err := s.accounts.Ledger(r.Context())
	switch {
	case err == nil:
		balance := ledger.Balance()
		page.Balance = balance.String()
		page.Negative = balance.Negative()
		page.Sources = ledger.CreditSources()
		page.Months = ledger.DebitMonths()
		page.Credits = creditRows(ledger.Credits)
		page.Debits = debitRows(ledger.Debits)
	case errors.Is(err, services.ErrNoOwner):
		page.Balance = core.Money{}.String()
	default:
		slog.ErrorContext(r.Context(), "Failed to load ledger", "error", err)
		http.Error(w, "failed to load ledger", http.StatusInternalServerError)
		return
	}

	s.renderPage(w, r, "dashboard.html", page)
}

func (s *Server) handleAddCredit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	source := sanitizeInput(r.Form.Get("source"))
	description := sanitizeInput(r.Form.Get("description"))
	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Amount must be a positive number</div>`))
		return
	}

	balance, err := s.accounts.AddCredit(r.Context(), sessionUser(r), source, amount, description)
	if err != nil {
		s.writeLedgerError(w, r, err, "credit")
		return
	}

	s.invalidateSeries()
	w.Header().Set("HX-Trigger", "ledger:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Added ` + template.HTMLEscapeString(amount.String()) +
		` from ` + template.HTMLEscapeString(source) +
		`. Balance: ` + template.HTMLEscapeString(balance.String()) + `</div>`))
}

func (s *Server) handleAddDebit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	category, err := core.ParseCategory(r.Form.Get("category"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Unknown category</div>`))
		return
	}
	description := sanitizeInput(r.Form.Get("description"))
	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Amount must be a positive number</div>`))
		return
	}

	balance, err := s.accounts.AddDebit(r.Context(), sessionUser(r), category, amount, description)
	if err != nil {
		s.writeLedgerError(w, r, err, "debit")
		return
	}

	s.invalidateSeries()
	w.Header().Set("HX-Trigger", "ledger:changed")
	w.WriteHeader(http.StatusOK)
	msg := `<div class="success">Spent ` + template.HTMLEscapeString(amount.String()) +
		` on ` + template.HTMLEscapeString(string(category)) +
		`. Balance: ` + template.HTMLEscapeString(balance.String()) + `</div>`
	if balance.Negative() {
		msg += `<div class="warning">The fund balance is negative</div>`
	}
	_, _ = w.Write([]byte(msg))
}

func (s *Server) writeLedgerError(w http.ResponseWriter, r *http.Request, err error, kind string) {
	switch {
	case errors.Is(err, services.ErrReadOnly):
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<div class="error">Your account can only view the ledger</div>`))
	case errors.Is(err, core.ErrEmptySource):
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Source is required</div>`))
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidCategory):
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid entry</div>`))
	default:
		slog.ErrorContext(r.Context(), "Ledger write failed", "kind", kind, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Failed to save the entry</div>`))
	}
}

// handleCreditList renders the credit history partial, optionally
// filtered by source.
func (s *Server) handleCreditList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	source := sanitizeInput(r.URL.Query().Get("source"))
	credits, err := s.accounts.Credits(r.Context(), source)
	if err != nil && !errors.Is(err, services.ErrNoOwner) {
		slog.ErrorContext(r.Context(), "Failed to list credits", "error", err)
		_, _ = w.Write([]byte(`<div class="error">Failed to load credits</div>`))
		return
	}

	data := struct {
		Source string
		Rows   []entryRow
	}{Source: source, Rows: creditRows(credits)}
	s.renderPage(w, r, "credits.html", data)
}

// handleDebitList renders the expense history partial, filtered by
// optional category and month.
func (s *Server) handleDebitList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var category core.Category
	if v := r.URL.Query().Get("category"); v != "" {
		parsed, err := core.ParseCategory(v)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">Unknown category</div>`))
			return
		}
		category = parsed
	}
	month := sanitizeInput(r.URL.Query().Get("month"))

	debits, err := s.accounts.Debits(r.Context(), category, month)
	if err != nil && !errors.Is(err, services.ErrNoOwner) {
		slog.ErrorContext(r.Context(), "Failed to list debits", "error", err)
		_, _ = w.Write([]byte(`<div class="error">Failed to load expenses</div>`))
		return
	}

	data := struct {
		Category string
		Month    string
		Rows     []entryRow
	}{Category: string(category), Month: month, Rows: debitRows(debits)}
	s.renderPage(w, r, "debits.html", data)
}
