package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"andromeda/internal/app/service"
	"andromeda/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// MailerWorker drains the outbound mail queue. Delivery is a logged stub
// until an SMTP provider is wired in; jobs are still consumed and formatted
// so the queue never backs up.
type MailerWorker struct {
	rdb       *redis.Client
	queueName string
}

func NewMailerWorker(rdb *redis.Client, queueName string) *MailerWorker {
	return &MailerWorker{rdb: rdb, queueName: queueName}
}

func (w *MailerWorker) Start(ctx context.Context) {
	log.Println("Mailer worker started, listening to queue:", w.queueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Mailer worker stopping...")
			return
		default:
			result, err := w.rdb.BRPop(ctx, 0*time.Second, w.queueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Printf("Mailer worker BRPop exiting or timed out: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}
				log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", w.queueName, err)
				time.Sleep(5 * time.Second)
				continue
			}

			// result is [queueName, payload]
			if len(result) < 2 || result[1] == "" {
				log.Println("WARN: BRPop returned empty mail payload.")
				continue
			}
			w.deliver(result[1])
		}
	}
}

func (w *MailerWorker) deliver(payload string) {
	var job service.MailJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		log.Printf("ERROR: Failed to unmarshal mail job, dropping: %v", err)
		return
	}

	switch job.Type {
	case service.MailTypePasswordReset:
		resetLink := config.AppConfig.ResetLinkBaseURL + "?token=" + job.ResetToken
		log.Printf("INFO: [MAILER] Password reset for %s <%s>: link %s (expires in %d hour(s))",
			job.DisplayName, job.Recipient, resetLink, job.ExpiresInHours)
	case service.MailTypeWelcome:
		log.Printf("INFO: [MAILER] Welcome mail for %s <%s>: account approved, sign-in is now available.",
			job.DisplayName, job.Recipient)
	default:
		log.Printf("WARN: Unknown mail job type '%s' (job %s), dropping.", job.Type, job.ID)
		return
	}
	log.Printf("INFO: Mail job %s (%s) delivered.", job.ID, job.Type)
}
