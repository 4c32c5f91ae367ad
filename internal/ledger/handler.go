package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/syair2222/merahputih-ledger/internal/platform/httpx"
)

// Handler wires the chart of accounts and journal posting endpoints. The
// actor identity arrives pre-authorized in the X-Actor header; access control
// is the portal's concern, not the ledger's.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, registry *Registry, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.listAccounts)
	r.Post("/accounts", h.createAccount)
	r.Get("/accounts/{id}", h.getAccount)
	r.Post("/accounts/{id}/deactivate", h.deactivateAccount)
	r.Get("/transactions", h.listTransactions)
	r.Post("/transactions", h.postTransaction)
	r.Get("/transactions/{id}", h.getTransaction)
}

type createAccountRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
}

type postLineRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	Debit     int64  `json:"debit" validate:"gte=0"`
	Credit    int64  `json:"credit" validate:"gte=0"`
	Notes     string `json:"notes"`
}

type postTransactionRequest struct {
	Date        string            `json:"date" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Reference   string            `json:"reference"`
	Confirm     bool              `json:"confirm" validate:"eq=true"`
	Lines       []postLineRequest `json:"lines" validate:"required,min=2,dive"`
}

func actorFrom(r *http.Request) string {
	return r.Header.Get("X-Actor")
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	var (
		accounts []Account
		err      error
	)
	if r.URL.Query().Get("include_inactive") == "true" {
		accounts, err = h.registry.List(r.Context())
	} else {
		accounts, err = h.registry.ListActive(r.Context())
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": toAccountViews(accounts)})
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := h.registry.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountView(acc))
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	acc, err := h.registry.Create(r.Context(), actorFrom(r), AccountSpec{
		ID:   req.ID,
		Name: req.Name,
		Type: AccountType(req.Type),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountView(acc))
}

func (h *Handler) deactivateAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Deactivate(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListTransactions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	views := make([]transactionView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, toTransactionView(entry))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": views})
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", ErrTransactionNotFound.Error())
		return
	}
	entry, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTransactionView(entry))
}

func (h *Handler) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req postTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	actor := actorFrom(r)
	if actor == "" {
		httpx.Problem(w, http.StatusBadRequest, "Missing Actor", "X-Actor header required")
		return
	}
	lines := make([]DraftLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, DraftLine{
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Notes:     line.Notes,
		})
	}
	posted, err := h.service.Post(r.Context(), PostingInput{
		Date:        date,
		Description: req.Description,
		Reference:   req.Reference,
		Actor:       actor,
		Lines:       lines,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("transaction posted",
		slog.String("transaction_id", posted.ID.String()),
		slog.Int64("total", posted.TotalDebit),
		slog.String("actor", actor))
	httpx.JSON(w, http.StatusCreated, toTransactionView(posted))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrTransactionNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAccountExists):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrTooFewLines),
		errors.Is(err, ErrLineSides),
		errors.Is(err, ErrNegativeAmount),
		errors.Is(err, ErrUnbalanced),
		errors.Is(err, ErrAccountInactive),
		errors.Is(err, ErrInvalidAccountType):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error("ledger request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

type accountView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Normal   string `json:"normal_balance"`
	Balance  int64  `json:"balance"`
	IsActive bool   `json:"is_active"`
}

func toAccountView(acc Account) accountView {
	return accountView{
		ID:       acc.ID,
		Name:     acc.Name,
		Type:     string(acc.Type),
		Normal:   string(acc.Normal),
		Balance:  acc.Balance,
		IsActive: acc.IsActive,
	}
}

type lineView struct {
	AccountID string `json:"account_id"`
	Debit     int64  `json:"debit"`
	Credit    int64  `json:"credit"`
	Notes     string `json:"notes,omitempty"`
}

type transactionView struct {
	ID          string     `json:"id"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Reference   string     `json:"reference,omitempty"`
	Status      string     `json:"status"`
	TotalDebit  int64      `json:"total_debit"`
	TotalCredit int64      `json:"total_credit"`
	CreatedBy   string     `json:"created_by"`
	PostedBy    string     `json:"posted_by"`
	PostedAt    time.Time  `json:"posted_at"`
	Lines       []lineView `json:"lines"`
}

func toTransactionView(t Transaction) transactionView {
	view := transactionView{
		ID:          t.ID.String(),
		Date:        t.Date.Format("2006-01-02"),
		Description: t.Description,
		Reference:   t.Reference,
		Status:      string(t.Status),
		TotalDebit:  t.TotalDebit,
		TotalCredit: t.TotalCredit,
		CreatedBy:   t.CreatedBy,
		PostedBy:    t.PostedBy,
		PostedAt:    t.PostedAt,
		Lines:       make([]lineView, 0, len(t.Lines)),
	}
	for _, line := range t.Lines {
		view.Lines = append(view.Lines, lineView{
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Notes:     line.Notes,
		})
	}
	return view
}

func toAccountViews(accounts []Account) []accountView {
	out := make([]accountView, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, toAccountView(acc))
	}
	return out
}
