package points

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/syair2222/merahputih-ledger/internal/platform/httpx"
	"github.com/syair2222/merahputih-ledger/jobs"
)

// Enqueuer submits distribution runs to the background queue.
type Enqueuer interface {
	EnqueuePointSalary(ctx context.Context, payload jobs.PointSalaryPayload) (*asynq.TaskInfo, error)
}

// Handler wires the point distribution endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer Enqueuer
	validate *validator.Validate
}

// NewHandler builds a Handler instance. enqueuer may be nil; async runs are
// then rejected.
func NewHandler(logger *slog.Logger, service *Service, enqueuer Enqueuer) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		enqueuer: enqueuer,
		validate: validator.New(),
	}
}

// MountRoutes registers HTTP routes for the points module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/distributions", h.runDistribution)
	r.Get("/awards", h.listAwards)
	r.Post("/awards", h.awardPoints)
}

type distributionRequest struct {
	Period  string `json:"period" validate:"required"`
	Confirm bool   `json:"confirm" validate:"eq=true"`
	Async   bool   `json:"async"`
}

type awardRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Amount   int64  `json:"amount" validate:"gt=0"`
	Reason   string `json:"reason" validate:"required"`
}

func actorFrom(r *http.Request) string {
	return r.Header.Get("X-Actor")
}

func (h *Handler) runDistribution(w http.ResponseWriter, r *http.Request) {
	var req distributionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	if _, err := time.Parse("2006-01", req.Period); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "period must be YYYY-MM")
		return
	}
	actor := actorFrom(r)
	if actor == "" {
		httpx.Problem(w, http.StatusBadRequest, "Missing Actor", "X-Actor header required")
		return
	}

	if req.Async {
		if h.enqueuer == nil {
			httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "background runs are not configured")
			return
		}
		info, err := h.enqueuer.EnqueuePointSalary(r.Context(), jobs.PointSalaryPayload{Period: req.Period, Actor: actor})
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"task_id": info.ID, "period": req.Period})
		return
	}

	result, err := h.service.RunMonthlyDistribution(r.Context(), actor, req.Period)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("point salary distributed",
		slog.String("period", result.Period),
		slog.Int("workers_processed", result.WorkersProcessed),
		slog.Int64("total", result.TotalPointsDistributed))
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) listAwards(w http.ResponseWriter, r *http.Request) {
	awards, err := h.service.ListAwards(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	views := make([]awardView, 0, len(awards))
	for _, award := range awards {
		views = append(views, toAwardView(award))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"awards": views})
}

func (h *Handler) awardPoints(w http.ResponseWriter, r *http.Request) {
	var req awardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	actor := actorFrom(r)
	if actor == "" {
		httpx.Problem(w, http.StatusBadRequest, "Missing Actor", "X-Actor header required")
		return
	}
	if err := h.service.AwardPoints(r.Context(), actor, req.MemberID, req.Amount, req.Reason); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type awardView struct {
	ID        int64     `json:"id"`
	WorkerID  int64     `json:"worker_id"`
	MemberID  string    `json:"member_id,omitempty"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Period    string    `json:"period,omitempty"`
	AwardedBy string    `json:"awarded_by"`
	AwardedAt time.Time `json:"awarded_at"`
}

func toAwardView(award PointAward) awardView {
	view := awardView{
		ID:        award.ID,
		WorkerID:  award.WorkerID,
		Amount:    award.Amount,
		Reason:    award.Reason,
		Period:    award.Period,
		AwardedBy: award.AwardedBy,
		AwardedAt: award.AwardedAt,
	}
	if award.MemberID != nil {
		view.MemberID = *award.MemberID
	}
	return view
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrWorkerNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrMemberMissing), errors.Is(err, ErrNoEligibleWorkers):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error("points request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
