package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeOrderExpire = "order:expire"

// OrderExpirePayload carries the order to expire.
type OrderExpirePayload struct {
	OrderID string `json:"orderId"`
}

func NewOrderExpireTask(payload OrderExpirePayload, after time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeOrderExpire, b)
	opts := []asynq.Option{asynq.ProcessIn(after)}

	return task, opts, nil
}
