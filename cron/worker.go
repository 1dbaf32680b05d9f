package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"learnhub/config"
	notifRepo "learnhub/database/repository/notification"
	"learnhub/services/tasks"

	"github.com/hibiken/asynq"
)

// InitCleanupWorker runs the retention worker and its scheduler in background.
// Read notifications older than the configured retention window are removed
// once a day; unread ones are kept until the recipient acts on them.
func InitCleanupWorker(repo notifRepo.NotificationRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisWorkerDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationCleanup, handleCleanupTask(repo))

	go func() {
		log.Println("[CleanupWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[CleanupWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[CleanupWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go runScheduler(redisOpts)
}

// runScheduler enqueues the daily cleanup task.
func runScheduler(redisOpts asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})

	task, err := tasks.NewCleanupTask(config.AppConfig.RetentionDays)
	if err != nil {
		log.Printf("[CleanupWorker] failed to build cleanup task: %v", err)
		return
	}

	if _, err := scheduler.Register("@daily", task); err != nil {
		log.Printf("[CleanupWorker] failed to register cleanup schedule: %v", err)
		return
	}
	if err := scheduler.Run(); err != nil {
		log.Printf("[CleanupWorker] scheduler stopped: %v", err)
	}
}

func handleCleanupTask(repo notifRepo.NotificationRepository) asynq.HandlerFunc {
	return func(_ context.Context, task *asynq.Task) error {
		var p tasks.CleanupPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[CleanupHandler] invalid payload: %v", err)
			return err
		}
		if p.RetentionDays <= 0 {
			p.RetentionDays = 90
		}

		cutoff := time.Now().UTC().AddDate(0, 0, -p.RetentionDays)
		removed, err := repo.DeleteReadBefore(cutoff)
		if err != nil {
			log.Printf("[CleanupHandler] retention sweep failed: %v", err)
			return err
		}

		log.Printf("[CleanupHandler] removed %d read notifications older than %s", removed, cutoff.Format("2006-01-02"))
		return nil
	}
}
