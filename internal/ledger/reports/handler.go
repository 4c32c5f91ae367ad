package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/syair2222/merahputih-ledger/internal/ledger"
	"github.com/syair2222/merahputih-ledger/internal/platform/httpx"
)

// Handler serves the financial statements.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a reports Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.trialBalance)
	r.Get("/income-statement", h.incomeStatement)
	r.Get("/balance-sheet", h.balanceSheet)
}

// windowFrom parses the optional from/to query pair. Supplying only one bound
// is rejected rather than silently treated as cumulative.
func windowFrom(r *http.Request) (*Window, error) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if fromRaw == "" && toRaw == "" {
		return nil, nil
	}
	if fromRaw == "" || toRaw == "" {
		return nil, errors.New("reports: both from and to are required for a periodic report")
	}
	from, err := time.Parse("2006-01-02", fromRaw)
	if err != nil {
		return nil, errors.New("reports: from must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", toRaw)
	if err != nil {
		return nil, errors.New("reports: to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, errors.New("reports: to must not precede from")
	}
	return &Window{From: from, To: to}, nil
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	window, err := windowFrom(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), window)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="trial-balance.csv"`)
		if err := WriteTrialBalanceCSV(w, tb); err != nil {
			h.logger.Error("write trial balance csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) incomeStatement(w http.ResponseWriter, r *http.Request) {
	window, err := windowFrom(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	is, err := h.service.IncomeStatement(r.Context(), window)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="income-statement.csv"`)
		if err := WriteIncomeStatementCSV(w, is); err != nil {
			h.logger.Error("write income statement csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, is)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	window, err := windowFrom(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), window)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="balance-sheet.csv"`)
		if err := WriteBalanceSheetCSV(w, bs); err != nil {
			h.logger.Error("write balance sheet csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ledger.ErrIntegrity) {
		// The fault is already logged and counted by the service; the
		// response still names it instead of rendering a lopsided report.
		httpx.Problem(w, http.StatusConflict, "Integrity Fault", err.Error())
		return
	}
	h.logger.Error("report request failed", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
