package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatsRefresh recomputes tenant delivery counters and customer
	// order aggregates across all companies.
	TaskStatsRefresh = "stats:refresh"
)

// StatsRefreshPayload scopes an aggregate refresh run.
type StatsRefreshPayload struct {
	// Scope is "all" or a single company id.
	Scope string `json:"scope"`
}

// NewStatsRefreshTask constructs an Asynq task.
func NewStatsRefreshTask(scope string) (*asynq.Task, error) {
	data, err := json.Marshal(StatsRefreshPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsRefresh, data), nil
}
