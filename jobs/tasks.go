package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypePointSalary distributes the monthly point salary.
	TaskTypePointSalary = "points:distribute_salary"
	// TaskTypeIntegrityCheck recomputes the trial balance and alerts on
	// imbalance.
	TaskTypeIntegrityCheck = "ledger:integrity_check"
)

// PointSalaryPayload carries the parameters of a distribution run.
type PointSalaryPayload struct {
	Period string `json:"period"`
	Actor  string `json:"actor"`
}

// NewPointSalaryTask constructs the distribution task.
func NewPointSalaryTask(payload PointSalaryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePointSalary, data), nil
}

// NewIntegrityCheckTask constructs the ledger integrity check task.
func NewIntegrityCheckTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskTypeIntegrityCheck, nil), nil
}
