package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"institute/config"
	"institute/services/fees"
	"institute/services/tasks"

	"github.com/hibiken/asynq"
)

func redisTaskQueueOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}
}

// AsynqExpiryScheduler enqueues delayed order-expiry tasks on Redis.
type AsynqExpiryScheduler struct {
	client *asynq.Client
}

// NewExpiryScheduler builds a scheduler backed by the task queue.
func NewExpiryScheduler() *AsynqExpiryScheduler {
	return &AsynqExpiryScheduler{client: asynq.NewClient(redisTaskQueueOpts())}
}

// ScheduleExpiry enqueues an expiry task that fires after the given delay.
func (s *AsynqExpiryScheduler) ScheduleExpiry(ctx context.Context, orderID string, after time.Duration) error {
	task, opts, err := tasks.NewOrderExpireTask(tasks.OrderExpirePayload{OrderID: orderID}, after)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, opts...)
	return err
}

// InitExpiryWorker runs the async worker in background.
func InitExpiryWorker(orch *fees.Orchestrator) {
	srv := asynq.NewServer(
		redisTaskQueueOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeOrderExpire, handleOrderExpireTask(orch))

	go func() {
		log.Println("[ExpiryWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleOrderExpireTask(orch *fees.Orchestrator) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.OrderExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryHandler] Invalid payload: %v", err)
			return err
		}

		if err := orch.Expire(ctx, p.OrderID); err != nil {
			log.Printf("[ExpiryHandler] Failed to expire order %s: %v", p.OrderID, err)
			return err
		}
		return nil
	}
}
