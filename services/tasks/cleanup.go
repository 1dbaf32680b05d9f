package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeNotificationCleanup = "notifications:cleanup"

// CleanupPayload configures one retention sweep.
type CleanupPayload struct {
	RetentionDays int `json:"retentionDays"`
}

// NewCleanupTask builds the periodic retention task.
func NewCleanupTask(retentionDays int) (*asynq.Task, error) {
	b, err := json.Marshal(CleanupPayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotificationCleanup, b), nil
}
