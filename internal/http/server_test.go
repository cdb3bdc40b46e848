package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"warga/internal/core"
	"warga/internal/log"
	"warga/internal/middleware/ratelimit"
	"warga/internal/services"
	"warga/internal/storage"
)

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts Options) (*Server, *services.App) {
	t.Helper()
	ctx := context.Background()
	state := services.NewState(ctx, storage.NewRepository(storage.NewMemoryStore()),
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithLogger(log.Discard()),
		services.WithFallbackCategory(core.CategoryC))
	auth, err := services.NewAuth(state, 4,
		services.Credential{Username: "admin", Password: "password", Role: core.RoleAdmin},
		services.Credential{Username: "bendahara", Password: "rahasia", Role: core.RoleTreasurer})
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}
	app := services.NewApp(state, auth, nil)
	if opts.RecapCacheTTL == 0 {
		opts.RecapCacheTTL = time.Minute
	}
	srv := NewServer(":0", app, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, app
}

func seeded(t *testing.T) (*Server, *services.App) {
	t.Helper()
	srv, app := newTestServer(t, Options{})
	if _, err := services.Seed(context.Background(), app); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return srv, app
}

type requestOption func(*http.Request)

func asAdmin(r *http.Request)     { r.SetBasicAuth("admin", "password") }
func asTreasurer(r *http.Request) { r.SetBasicAuth("bendahara", "rahasia") }

func do(t *testing.T, srv *Server, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, o := range opts {
		o(req)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func TestHealthAndHeaders(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s missing middleware headers: %v", path, rr.Header())
		}
	}
}

func TestAuthentication(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/api/residents", nil)
	if rr.Code != http.StatusUnauthorized || rr.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("expected 401 with challenge, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/residents", nil, asTreasurer); rr.Code != http.StatusOK {
		t.Fatalf("treasurer list: expected 200, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/residents", map[string]string{}, asTreasurer); rr.Code != http.StatusForbidden {
		t.Fatalf("treasurer create: expected 403, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/session", loginRequest{Username: "admin", Password: "nope"}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/session", loginRequest{Username: "Admin", Password: "password"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookie || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
	withCookie := func(r *http.Request) { r.AddCookie(cookies[0]) }

	rr = do(t, srv, http.MethodGet, "/api/session", nil, withCookie)
	if got := decode[sessionResponse](t, rr); got.User.Role != core.RoleAdmin {
		t.Fatalf("unexpected session %+v", got)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/session", nil, withCookie); rr.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/session", nil, withCookie); rr.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", rr.Code)
	}
}

func TestResidentLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	head := core.Resident{
		Name: "Budi", HouseholdID: "3201010101010001", NIK: "3201019999990001", Sex: core.Male,
		Relationship: core.HeadOfHousehold, Address: "Jl. A1", Unit: "A1",
	}

	rr := do(t, srv, http.MethodPost, "/api/residents", head, asAdmin)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode[core.Resident](t, rr)
	if created.ID == "" || created.Category != core.CategoryC {
		t.Fatalf("unexpected created resident %+v", created)
	}

	dup := head
	dup.Name = "Joko"
	if rr := do(t, srv, http.MethodPost, "/api/residents", dup, asAdmin); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second head: expected 422, got %d", rr.Code)
	}

	bad := head
	bad.Relationship = "Anak"
	bad.NIK = "123"
	rr = do(t, srv, http.MethodPost, "/api/residents", bad, asAdmin)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad nik: expected 422, got %d", rr.Code)
	}
	if body := decode[errorResponse](t, rr); body.Fields["nik"] != "kk" {
		t.Fatalf("expected nik field error, got %+v", body)
	}

	path := "/api/residents/" + created.ID
	if rr := do(t, srv, http.MethodDelete, path, nil, asAdmin); rr.Code != http.StatusPreconditionRequired {
		t.Fatalf("unconfirmed delete: expected 428, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, path+"?confirm=true", nil, asAdmin); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, path, nil, asAdmin); rr.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rr.Code)
	}
}

func TestArrearsLookup(t *testing.T) {
	srv, _ := seeded(t)

	rr := do(t, srv, http.MethodGet, "/api/arrears/3273010101010001", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	a := decode[core.Arrears](t, rr)
	if a.HeadName != "Budi Santoso" || len(a.Lines) != 5 {
		t.Fatalf("unexpected arrears %+v", a)
	}

	cases := map[string]int{
		"/api/arrears/3273010101019999": http.StatusNotFound,
		"/api/arrears/12345":            http.StatusUnprocessableEntity,
	}
	for path, want := range cases {
		if rr := do(t, srv, http.MethodGet, path, nil); rr.Code != want {
			t.Errorf("%s: expected %d, got %d", path, want, rr.Code)
		}
	}
}

func TestRecapBuiltBeforeWriteIsNotCached(t *testing.T) {
	srv, app := seeded(t)

	gen := srv.recapGeneration()
	stale, err := app.Reports.Recap(2025, 3)
	if err != nil {
		t.Fatalf("recap: %v", err)
	}

	// A write commits after the recap was built but before it is stored.
	in := services.CashEntryInput{Date: "2025-03-10", Description: "Sapu", Amount: "10.000"}
	if _, err := app.Cashbook.AddExpense(context.Background(), in); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	if srv.storeRecap(recapKey(2025, 3), gen, stale) {
		t.Fatal("stale recap was stored after a write")
	}
	if srv.recaps.Size() != 0 {
		t.Fatalf("expected empty recap cache, size=%d", srv.recaps.Size())
	}

	rr := do(t, srv, http.MethodGet, "/api/recap?year=2025&month=3", nil, asTreasurer)
	if rc := decode[core.MonthlyRecap](t, rr); rc.Balance.Rupiah != 230000 {
		t.Fatalf("expected fresh balance 230000, got %d", rc.Balance.Rupiah)
	}
	if !srv.storeRecap(recapKey(2025, 3), srv.recapGeneration(), stale) {
		t.Fatal("store with the current generation must succeed")
	}
}

func TestRecapCacheInvalidatedOnWrite(t *testing.T) {
	srv, _ := seeded(t)

	rr := do(t, srv, http.MethodGet, "/api/recap?year=2025&month=3", nil, asTreasurer)
	if rc := decode[core.MonthlyRecap](t, rr); rc.Balance.Rupiah != 240000 {
		t.Fatalf("expected balance 240000, got %+v", rc)
	}
	if srv.recaps.Size() != 1 {
		t.Fatalf("expected cached recap, size=%d", srv.recaps.Size())
	}

	in := services.CashEntryInput{Date: "2025-03-10", Description: "Sapu", Amount: "10.000"}
	if rr := do(t, srv, http.MethodPost, "/api/expenses", in, asTreasurer); rr.Code != http.StatusCreated {
		t.Fatalf("create expense: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if srv.recaps.Size() != 0 {
		t.Fatalf("write must purge the recap cache")
	}

	rr = do(t, srv, http.MethodGet, "/api/recap?year=2025&month=3", nil, asTreasurer)
	if rc := decode[core.MonthlyRecap](t, rr); rc.Balance.Rupiah != 230000 {
		t.Fatalf("expected balance 230000 after expense, got %d", rc.Balance.Rupiah)
	}

	if rr := do(t, srv, http.MethodGet, "/api/recap?month=13", nil, asTreasurer); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad month: expected 422, got %d", rr.Code)
	}
}

func TestPublicRecapAnonymised(t *testing.T) {
	srv, _ := seeded(t)
	rr := do(t, srv, http.MethodGet, "/api/public/recap?year=2025&month=3", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); strings.Contains(body, "3273010101010001") || strings.Contains(body, "Budi") {
		t.Fatalf("public recap leaks household data: %s", body)
	}
	if rr := do(t, srv, http.MethodGet, "/api/dashboard", nil); rr.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rr.Code)
	}
}

func TestReportDownload(t *testing.T) {
	srv, _ := seeded(t)

	rr := do(t, srv, http.MethodGet, "/api/reports/RT?year=2025&month=3", nil, asTreasurer)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "Laporan_RT_Maret_2025.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.Contains(rr.Body.String(), "Iuran RT - Budi Santoso") {
		t.Fatalf("report missing RT payment:\n%s", rr.Body.String())
	}

	cases := map[string]int{
		"/api/reports/Keseluruhan?year=2025&month=3&format=xlsx": http.StatusOK,
		"/api/reports/Bulanan?year=2025&month=3":                 http.StatusNotFound,
		"/api/reports/PKK?year=2025&month=3&format=pdf":          http.StatusBadRequest,
	}
	for path, want := range cases {
		if rr := do(t, srv, http.MethodGet, path, nil, asTreasurer); rr.Code != want {
			t.Errorf("%s: expected %d, got %d", path, want, rr.Code)
		}
	}
}

func TestPaymentsAndHistory(t *testing.T) {
	srv, _ := seeded(t)

	req := paymentRequest{HouseholdID: "3273010101010002", Year: 2025, Month: 3, Type: core.DuesPKK}
	rr := do(t, srv, http.MethodPost, "/api/dues/payments", req, asTreasurer)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if p := decode[core.DuesPayment](t, rr); p.Amount.Rupiah != 10000 {
		t.Fatalf("expected category B PKK rate, got %+v", p)
	}

	req.Type = "Sampah"
	if rr := do(t, srv, http.MethodPost, "/api/dues/payments", req, asTreasurer); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad type: expected 422, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/dues/history?year=2025&month=3&q=made", nil, asTreasurer)
	page := decode[core.Page[core.PaymentStatus]](t, rr)
	if page.TotalItems != 1 || !page.Items[0].RT.Paid || !page.Items[0].PKK.Paid {
		t.Fatalf("unexpected history %+v", page)
	}
}

func TestAdminLists(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPost, "/api/admin-lists/pekerjaan", listItemRequest{Item: "Petani"}, asAdmin)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", rr.Code)
	}
	if items := decode[[]string](t, rr); items[len(items)-1] != "Petani" {
		t.Fatalf("item not appended: %v", items)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/admin-lists/pekerjaan/Petani", nil, asAdmin); rr.Code != http.StatusNoContent {
		t.Fatalf("remove: expected 204, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/admin-lists/hobi", nil, asAdmin); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown category: expected 404, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/admin-lists", nil, asTreasurer); rr.Code != http.StatusForbidden {
		t.Fatalf("treasurer: expected 403, got %d", rr.Code)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimit: ratelimit.Config{RequestsPerMinute: 1, Methods: []string{http.MethodPost}}})

	login := loginRequest{Username: "admin", Password: "password"}
	if rr := do(t, srv, http.MethodPost, "/api/session", login); rr.Code != http.StatusOK {
		t.Fatalf("first login: expected 200, got %d", rr.Code)
	}
	rr := do(t, srv, http.MethodPost, "/api/session", login)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/dashboard", nil); rr.Code != http.StatusOK {
		t.Fatalf("reads are not limited, got %d", rr.Code)
	}
}

func TestExpenseReceiptUpload(t *testing.T) {
	srv, app := newTestServer(t, Options{})

	photo := core.EncodeReceipt("image/png", bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 8000))
	in := services.CashEntryInput{Date: "2025-03-10", Description: "Cat tembok", Amount: "120.000", Receipt: photo}
	rr := do(t, srv, http.MethodPost, "/api/expenses", in, asTreasurer)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %.200s", rr.Code, rr.Body.String())
	}
	if got := app.Cashbook.Expenses(2025, 3); len(got) != 1 || got[0].Receipt != photo {
		t.Fatalf("receipt not stored")
	}

	in.Receipt = "data:text/plain;base64,aGFsbw=="
	rr = do(t, srv, http.MethodPost, "/api/expenses", in, asTreasurer)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if body := decode[errorResponse](t, rr); body.Fields["bukti"] != "receipt" {
		t.Fatalf("expected bukti field error, got %+v", body)
	}
}
