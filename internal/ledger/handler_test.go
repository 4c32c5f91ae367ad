package ledger

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	_ "github.com/syair2222/merahputih-ledger/testing"
)

func newTestHandler(t *testing.T) (*Handler, *memLedgerRepo) {
	t.Helper()
	accRepo := newMemAccountRepo()
	txRepo := newMemLedgerRepo(seedAccounts()...)
	for _, acc := range seedAccounts() {
		accRepo.accounts[acc.ID] = acc
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := NewRegistry(accRepo, nil)
	service := NewService(txRepo, nil)
	return NewHandler(logger, registry, service), txRepo
}

func serveLedger(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	h.MountRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPostTransactionRequiresConfirmFlag(t *testing.T) {
	h, repo := newTestHandler(t)
	body := `{"date":"2026-03-10","description":"Pendapatan jasa","lines":[
{"account_id":"1000","debit":250000},{"account_id":"4000","credit":250000}]}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set("X-Actor", "bendahara")

	rec := serveLedger(h, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Empty(t, repo.transactions)
}

func TestPostTransactionRequiresActorHeader(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"date":"2026-03-10","description":"Pendapatan jasa","confirm":true,"lines":[
{"account_id":"1000","debit":250000},{"account_id":"4000","credit":250000}]}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))

	rec := serveLedger(h, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostTransactionHappyPath(t *testing.T) {
	h, repo := newTestHandler(t)
	body := `{"date":"2026-03-10","description":"Pendapatan jasa","confirm":true,"lines":[
{"account_id":"1000","debit":250000},{"account_id":"4000","credit":250000}]}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set("X-Actor", "bendahara")

	rec := serveLedger(h, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.transactions, 1)
	require.Contains(t, rec.Body.String(), `"status":"POSTED"`)
	require.Contains(t, rec.Body.String(), `"total_debit":250000`)
}

func TestPostTransactionMapsUnbalancedTo422(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"date":"2026-03-10","description":"Selisih","confirm":true,"lines":[
{"account_id":"1000","debit":500000},{"account_id":"4000","credit":499999}]}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set("X-Actor", "bendahara")

	rec := serveLedger(h, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetTransactionByID(t *testing.T) {
	h, repo := newTestHandler(t)
	body := `{"date":"2026-03-10","description":"Pendapatan jasa","confirm":true,"lines":[
{"account_id":"1000","debit":250000},{"account_id":"4000","credit":250000}]}`
	post := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	post.Header.Set("X-Actor", "bendahara")
	require.Equal(t, http.StatusCreated, serveLedger(h, post).Code)
	require.Len(t, repo.transactions, 1)

	rec := serveLedger(h, httptest.NewRequest(http.MethodGet, "/transactions/"+repo.transactions[0].ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_debit":250000`)

	rec = serveLedger(h, httptest.NewRequest(http.MethodGet, "/transactions/"+uuid.NewString(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serveLedger(h, httptest.NewRequest(http.MethodGet, "/transactions/not-a-uuid", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAccountRejectsUnknownType(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"id":"1500","name":"Piutang","type":"CONTRA"}`
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(body))
	req.Header.Set("X-Actor", "bendahara")

	rec := serveLedger(h, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetMissingAccountReturns404(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/accounts/9999", nil)

	rec := serveLedger(h, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
