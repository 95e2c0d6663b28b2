package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"housefund/internal/auth"
	"housefund/internal/services"
	"housefund/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	accounts := services.NewAccountService(store.NewMemoryStore(), nil, "dass")
	sessions := auth.NewSessionManager(time.Hour)
	t.Cleanup(sessions.Close)
	return NewServer(":0", accounts, sessions, false)
}

func postForm(srv *Server, path, form string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func get(srv *Server, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func signUp(t *testing.T, srv *Server, username, password string) *http.Cookie {
	t.Helper()
	rr := postForm(srv, "/register", "username="+username+"&password="+password+"&confirm_password="+password)
	if rr.Code != http.StatusOK {
		t.Fatalf("register %s status=%d body=%s", username, rr.Code, rr.Body.String())
	}
	rr = postForm(srv, "/login", "username="+username+"&password="+password)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login %s status=%d body=%s", username, rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("login did not set a session cookie")
	return nil
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(srv, path); rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	srv := newTestServer(t)
	rr := get(srv, "/")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect location = %s, want /login", loc)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	signUp(t, srv, "dass", "secret")

	rr := postForm(srv, "/login", "username=dass&password=wrong")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid username or password") {
		t.Errorf("expected error message in body: %s", rr.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)
	signUp(t, srv, "dass", "secret")

	rr := postForm(srv, "/register", "username=dass&password=x&confirm_password=x")
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate register status=%d, want 409", rr.Code)
	}

	rr = postForm(srv, "/register", "username=bob&password=x&confirm_password=y")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("mismatched register status=%d, want 422", rr.Code)
	}
}

func TestOwnerLedgerFlow(t *testing.T) {
	srv := newTestServer(t)
	owner := signUp(t, srv, "dass", "secret")

	rr := get(srv, "/", owner)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Add expense") {
		t.Errorf("owner dashboard should show the expense form")
	}

	rr = postForm(srv, "/credits", "source=salary&amount=100&description=pay", owner)
	if rr.Code != http.StatusOK {
		t.Fatalf("add credit status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Balance: 100.00") {
		t.Errorf("credit response missing balance: %s", rr.Body.String())
	}

	rr = postForm(srv, "/debits", "category=Food&amount=30&description=groceries", owner)
	if rr.Code != http.StatusOK {
		t.Fatalf("add debit status=%d body=%s", rr.Code, rr.Body.String())
	}

	// Overspend is allowed and flagged
	rr = postForm(srv, "/debits", "category=Shopping&amount=100&description=couch", owner)
	if rr.Code != http.StatusOK {
		t.Fatalf("overspend status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Balance: -30.00") {
		t.Errorf("overspend response missing negative balance: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "negative") {
		t.Errorf("overspend response missing warning: %s", rr.Body.String())
	}

	rr = get(srv, "/", owner)
	if !strings.Contains(rr.Body.String(), "The fund balance is negative") {
		t.Errorf("dashboard missing negative balance warning")
	}
}

func TestLedgerWriteValidation(t *testing.T) {
	srv := newTestServer(t)
	owner := signUp(t, srv, "dass", "secret")

	rr := postForm(srv, "/credits", "source=salary&amount=abc", owner)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad amount status=%d, want 422", rr.Code)
	}

	rr = postForm(srv, "/credits", "source=&amount=10", owner)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty source status=%d, want 422", rr.Code)
	}

	rr = postForm(srv, "/debits", "category=Gadgets&amount=10", owner)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad category status=%d, want 422", rr.Code)
	}

	rr = get(srv, "/credits", owner)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /credits status=%d, want 405", rr.Code)
	}
}

func TestViewerIsReadOnly(t *testing.T) {
	srv := newTestServer(t)
	signUp(t, srv, "dass", "secret")
	viewer := signUp(t, srv, "guest", "pw")

	rr := get(srv, "/", viewer)
	if rr.Code != http.StatusOK {
		t.Fatalf("viewer dashboard status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "view-only") {
		t.Errorf("viewer dashboard should mention read-only access")
	}

	rr = postForm(srv, "/debits", "category=Food&amount=10", viewer)
	if rr.Code != http.StatusForbidden {
		t.Errorf("viewer debit status=%d, want 403", rr.Code)
	}
	rr = postForm(srv, "/credits", "source=salary&amount=10", viewer)
	if rr.Code != http.StatusForbidden {
		t.Errorf("viewer credit status=%d, want 403", rr.Code)
	}
}

func TestPartialsAndFilters(t *testing.T) {
	srv := newTestServer(t)
	owner := signUp(t, srv, "dass", "secret")
	postForm(srv, "/credits", "source=salary&amount=500", owner)
	postForm(srv, "/credits", "source=bonus&amount=50", owner)
	postForm(srv, "/debits", "category=Food&amount=12.50&description=lunch", owner)
	postForm(srv, "/debits", "category=Medical&amount=40", owner)

	rr := get(srv, "/ui/credits?source=salary", owner)
	if rr.Code != http.StatusOK {
		t.Fatalf("credits partial status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "salary") || strings.Contains(body, "bonus") {
		t.Errorf("source filter not applied: %s", body)
	}

	rr = get(srv, "/ui/debits?category=Food", owner)
	body = rr.Body.String()
	if !strings.Contains(body, "12.50") || strings.Contains(body, "Medical") {
		t.Errorf("category filter not applied: %s", body)
	}

	rr = get(srv, "/ui/debits?category=Gadgets", owner)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad category filter status=%d, want 422", rr.Code)
	}
}

func TestSeriesEndpoints(t *testing.T) {
	srv := newTestServer(t)
	owner := signUp(t, srv, "dass", "secret")
	postForm(srv, "/credits", "source=salary&amount=500", owner)
	postForm(srv, "/debits", "category=Food&amount=20", owner)
	postForm(srv, "/debits", "category=Food&amount=5", owner)
	postForm(srv, "/debits", "category=Housing&amount=300", owner)

	rr := get(srv, "/api/series/categories", owner)
	if rr.Code != http.StatusOK {
		t.Fatalf("category series status=%d", rr.Code)
	}
	var points []seriesPoint
	if err := json.Unmarshal(rr.Body.Bytes(), &points); err != nil {
		t.Fatalf("decode category series: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("category series = %v, want 2 points", points)
	}
	if points[0].Label != "Food" || points[0].Amount != 25 {
		t.Errorf("category series[0] = %v, want Food 25", points[0])
	}

	// Second read hits the cache and must agree
	rr = get(srv, "/api/series/categories", owner)
	var cached []seriesPoint
	if err := json.Unmarshal(rr.Body.Bytes(), &cached); err != nil {
		t.Fatalf("decode cached series: %v", err)
	}
	if len(cached) != len(points) {
		t.Errorf("cached series length = %d, want %d", len(cached), len(points))
	}

	// A write invalidates the cached series
	postForm(srv, "/debits", "category=Medical&amount=10", owner)
	rr = get(srv, "/api/series/categories", owner)
	if err := json.Unmarshal(rr.Body.Bytes(), &points); err != nil {
		t.Fatalf("decode series after write: %v", err)
	}
	if len(points) != 3 {
		t.Errorf("series after write = %v, want 3 points", points)
	}

	rr = get(srv, "/api/series/months", owner)
	if rr.Code != http.StatusOK {
		t.Fatalf("month series status=%d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &points); err != nil {
		t.Fatalf("decode month series: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("month series = %v, want 1 point", points)
	}
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	owner := signUp(t, srv, "dass", "secret")

	rr := postForm(srv, "/logout", "", owner)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("logout status=%d", rr.Code)
	}

	rr = get(srv, "/", owner)
	if rr.Code != http.StatusSeeOther {
		t.Errorf("dashboard after logout status=%d, want redirect", rr.Code)
	}
}

func TestForgotPasswordInvalidatesSessions(t *testing.T) {
	srv := newTestServer(t)
	owner := signUp(t, srv, "dass", "secret")

	rr := postForm(srv, "/forgot", "username=dass&password=newpw&confirm_password=newpw")
	if rr.Code != http.StatusOK {
		t.Fatalf("forgot status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = get(srv, "/", owner)
	if rr.Code != http.StatusSeeOther {
		t.Errorf("old session after reset status=%d, want redirect", rr.Code)
	}

	rr = postForm(srv, "/login", "username=dass&password=newpw")
	if rr.Code != http.StatusSeeOther {
		t.Errorf("login with new password status=%d, want redirect", rr.Code)
	}
}
