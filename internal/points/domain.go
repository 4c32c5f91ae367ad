// Package points tracks worker point balances: a side table outside the
// double-entry ledger that represents a simplified liability to workers.
// Only the aggregate of each distribution run reaches the ledger proper.
package points

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Worker is a cooperative worker eligible for point salary.
type Worker struct {
	ID                 int64
	MemberID           *string
	Name               string
	IsWorker           bool
	MonthlyPointSalary int64
	PointBalance       int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PointAward records one increment of a worker's point balance.
type PointAward struct {
	ID        int64
	WorkerID  int64
	MemberID  *string
	Amount    int64
	Reason    string
	Period    string
	AwardedBy string
	AwardedAt time.Time
}

// DistributionError names a worker that could not be processed.
type DistributionError struct {
	WorkerID int64  `json:"worker_id"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
}

// DistributionResult summarises one monthly run. TransactionID is the
// aggregate ledger entry posted for the successfully-applied total; it is
// uuid.Nil when nothing was distributed.
type DistributionResult struct {
	Period                 string              `json:"period"`
	WorkersProcessed       int                 `json:"workers_processed"`
	TotalPointsDistributed int64               `json:"total_points_distributed"`
	TransactionID          uuid.UUID           `json:"transaction_id"`
	Errors                 []DistributionError `json:"errors"`
}

var (
	// ErrWorkerNotFound indicates a missing worker row.
	ErrWorkerNotFound = errors.New("points: worker not found")
	// ErrMemberMissing indicates a worker without a linked member record.
	ErrMemberMissing = errors.New("points: linked member record missing")
	// ErrNoEligibleWorkers indicates a run with nothing to distribute.
	ErrNoEligibleWorkers = errors.New("points: no eligible workers")
)
