package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"painel/internal/config"
	"painel/internal/core"
	"painel/internal/ledger/memory"
	"painel/internal/log"
	"painel/internal/services"
)

func testLedger() []core.Transaction {
	return []core.Transaction{
		{Date: core.NewDate(2023, 5, 10), Description: "PIX RECEBIDO", Credit: decimal.NewFromInt(1000),
			Bank: "Itaú", Account: "Receita de Serviços", SubAccount: "Panasonic"},
		{Date: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), Description: "PAGTO SALARIO", Debit: decimal.RequireFromString("300.5"),
			Bank: "Itaú", Account: "Pessoal", SubAccount: "Salário"},
		{Date: core.NewDate(2024, 1, 20), Description: "TED RECEBIDA", Credit: decimal.NewFromInt(500),
			Balance:    decimal.NullDecimal{Decimal: decimal.NewFromInt(1000), Valid: true},
			RawBalance: "1.000,00",
			Bank:       "Bradesco", Account: "Receita de Serviços", SubAccount: "Intelbras"},
	}
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
}

func newTestServer(t *testing.T, store *memory.Store) *Server {
	t.Helper()
	reports := services.NewReportService(store, config.DefaultRules(), time.Minute, quietLogger())
	srv := NewServer(":0", reports, store, quietLogger())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, memory.New(testLedger()...))

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := get(t, srv, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestReadyFailsWhenLedgerUnavailable(t *testing.T) {
	reports := services.NewReportService(failingReader{}, config.DefaultRules(), time.Minute, quietLogger())
	srv := NewServer(":0", reports, nil, quietLogger())
	defer srv.Shutdown(context.Background())

	if rr := get(t, srv, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	rr := get(t, srv, "/api/years")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body errorResponse
	decode(t, rr, &body)
	if body.Error == "" || body.RequestID == "" {
		t.Fatalf("error body should carry a message and the request ID: %+v", body)
	}
	if strings.Contains(body.Error, "locked") {
		t.Fatalf("internal error details leaked: %q", body.Error)
	}
}

type failingReader struct{}

func (failingReader) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("database is locked")
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv := newTestServer(t, memory.New(testLedger()...))

	rr := get(t, srv, "/api/years")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("unexpected content type %q", ct)
	}
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "X-Request-ID"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
	var body yearsResponse
	decode(t, rr, &body)
	if len(body.Years) != 2 || body.Years[0] != 2023 {
		t.Fatalf("unexpected years %v", body.Years)
	}
}

func TestOverviewEndpoint(t *testing.T) {
	srv := newTestServer(t, memory.New(testLedger()...))

	rr := get(t, srv, "/api/dashboard/overview?start_year=2024")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{`"start_year":2024`, `"end_year":2024`, `"salary":[{"month":"2024-01","value":300.50}]`, `"profit":199.50`} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %s in %s", want, body)
		}
	}

	if rr := get(t, srv, "/api/dashboard/overview?start_year=2025&end_year=2024"); rr.Code != http.StatusBadRequest {
		t.Fatalf("inverted range: expected 400, got %d", rr.Code)
	}
	if rr := get(t, srv, "/api/dashboard/overview?start_year=abc"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad year: expected 400, got %d", rr.Code)
	}
}

func TestComparisonEndpoint(t *testing.T) {
	srv := newTestServer(t, memory.New(testLedger()...))

	rr := get(t, srv, "/api/dashboard/comparison?period=year&limit=2")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var body struct {
		Period string `json:"period"`
		Rows   []struct {
			Period  string      `json:"period"`
			Balance json.Number `json:"balance"`
		} `json:"rows"`
	}
	decode(t, rr, &body)
	if body.Period != "year" || len(body.Rows) != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Rows[0].Period != "2024" || body.Rows[0].Balance != "199.50" {
		t.Fatalf("expected newest year first, got %+v", body.Rows[0])
	}

	for _, q := range []string{"period=day", "limit=0", "limit=4", "limit=x"} {
		if rr := get(t, srv, "/api/dashboard/comparison?"+q); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rr.Code)
		}
	}
}

func TestFlowsAccountsSuppliers(t *testing.T) {
	srv := newTestServer(t, memory.New(testLedger()...))

	rr := get(t, srv, "/api/dashboard/flows")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"by_account":[`) {
		t.Fatalf("flows: %d %s", rr.Code, rr.Body.String())
	}

	rr = get(t, srv, "/api/dashboard/accounts?account=receita%20de%20servi%C3%A7os&subaccount=Intelbras")
	if rr.Code != http.StatusOK {
		t.Fatalf("accounts: %d %s", rr.Code, rr.Body.String())
	}
	var acc accountsResponse
	decode(t, rr, &acc)
	if acc.Account != "Receita de Serviços" || acc.SubAccount != "Intelbras" || len(acc.ByYearSub) != 1 {
		t.Fatalf("unexpected accounts body %+v", acc)
	}

	rr = get(t, srv, "/api/dashboard/suppliers")
	if rr.Code != http.StatusOK {
		t.Fatalf("suppliers: %d %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"supplier":"Panasonic"`) || !strings.Contains(body, `"share":"66.67%"`) {
		t.Fatalf("unexpected suppliers body %s", body)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv := newTestServer(t, memory.New(testLedger()...))

	rr := get(t, srv, "/api/history?year=2024&bank=all&q=salario")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	want := `{"data":"2024-01-15","descricao":"PAGTO SALARIO","documento":"","debito":300.50,"credito":0.00,"valor":-300.50,"saldo":null,"banco":"Itaú","conta":"Pessoal","subconta":"Salário"}`
	if !strings.Contains(body, want) {
		t.Fatalf("missing row %s in %s", want, body)
	}
	if !strings.Contains(body, `"columns":["data","descricao","documento","debito","credito","valor","saldo","banco","conta","subconta"]`) {
		t.Fatalf("columns missing or out of order: %s", body)
	}

	rr = get(t, srv, "/api/history?year=2022")
	var empty historyResponse
	decode(t, rr, &empty)
	if empty.Rows == nil || len(empty.Rows) != 0 {
		t.Fatalf("expected an empty row list, got %+v", empty.Rows)
	}
	if !strings.Contains(rr.Body.String(), `"rows":[]`) {
		t.Fatalf("empty rows must encode as []: %s", rr.Body.String())
	}

	if rr := get(t, srv, "/api/history?month=13"); rr.Code != http.StatusBadRequest {
		t.Fatalf("month 13: expected 400, got %d", rr.Code)
	}
}

func TestBanksEndpoints(t *testing.T) {
	srv := newTestServer(t, memory.New(testLedger()...))

	rr := get(t, srv, "/api/banks?start=2024-01-01&bank=Ita%C3%BA")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var banks banksResponse
	decode(t, rr, &banks)
	if banks.Start != "2024-01-01" || banks.End != "2024-01-20" || banks.Bank != "Itaú" {
		t.Fatalf("unexpected bounds or selection %+v", banks)
	}
	if len(banks.Flows) != 4 || len(banks.Daily) != 2 {
		t.Fatalf("unexpected flows %d / daily %d", len(banks.Flows), len(banks.Daily))
	}

	if rr := get(t, srv, "/api/banks?start=01/01/2024"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", rr.Code)
	}

	rr = get(t, srv, "/api/banks/trend?value=debito&granularity=year")
	if rr.Code != http.StatusOK {
		t.Fatalf("trend status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `{"year":2024,"bank":"Itaú","value":300.50}`) {
		t.Fatalf("unexpected trend body %s", rr.Body.String())
	}
	for _, q := range []string{"value=saldo", "granularity=week"} {
		if rr := get(t, srv, "/api/banks/trend?"+q); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rr.Code)
		}
	}
}

func TestRefreshInvalidatesSnapshot(t *testing.T) {
	store := memory.New(testLedger()...)
	srv := newTestServer(t, store)

	var before yearsResponse
	decode(t, get(t, srv, "/api/years"), &before)

	if _, err := store.InsertTransactions(context.Background(), []core.Transaction{
		{Date: core.NewDate(2025, 1, 2), Description: "PIX", Credit: decimal.NewFromInt(1), Bank: "Itaú"},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var cached yearsResponse
	decode(t, get(t, srv, "/api/years"), &cached)
	if len(cached.Years) != len(before.Years) {
		t.Fatalf("snapshot should still be cached, got %v", cached.Years)
	}

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/snapshot/refresh", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("refresh status=%d", rr.Code)
	}

	var after yearsResponse
	decode(t, get(t, srv, "/api/years"), &after)
	if len(after.Years) != 3 || after.Years[2] != 2025 {
		t.Fatalf("expected reload after refresh, got %v", after.Years)
	}
}

func TestRefreshIsRateLimited(t *testing.T) {
	srv := newTestServer(t, memory.New())

	var last int
	for i := 0; i <= refreshLimit; i++ {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/snapshot/refresh", nil))
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after %d refreshes, got %d", refreshLimit, last)
	}

	// GETs are not limited.
	if rr := get(t, srv, "/api/years"); rr.Code != http.StatusOK {
		t.Fatalf("GET after limit: %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/years", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
