package service

import (
	"context"
	"encoding/json"
	"log"

	"andromeda/internal/common"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Mailer is the outbound notification sink. Failures are reported to the
// caller but are never fatal to the request that triggered them.
type Mailer interface {
	SendPasswordReset(ctx context.Context, recipient, displayName, resetToken string, expiresInHours int) error
	SendWelcome(ctx context.Context, recipient, displayName string) error
}

const (
	MailTypePasswordReset = "password_reset"
	MailTypeWelcome       = "welcome"
)

// MailJob is the payload pushed onto the Redis mail queue and consumed by the
// mailer worker.
type MailJob struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Recipient      string `json:"recipient"`
	DisplayName    string `json:"display_name"`
	ResetToken     string `json:"reset_token,omitempty"`
	ExpiresInHours int    `json:"expires_in_hours,omitempty"`
}

// RedisMailService queues mail jobs for asynchronous delivery by the worker.
type RedisMailService struct {
	rdb       *redis.Client
	queueName string
}

func NewRedisMailService(rdb *redis.Client, queueName string) *RedisMailService {
	return &RedisMailService{rdb: rdb, queueName: queueName}
}

func (s *RedisMailService) SendPasswordReset(ctx context.Context, recipient, displayName, resetToken string, expiresInHours int) error {
	return s.enqueue(ctx, MailJob{
		ID:             uuid.NewString(),
		Type:           MailTypePasswordReset,
		Recipient:      recipient,
		DisplayName:    displayName,
		ResetToken:     resetToken,
		ExpiresInHours: expiresInHours,
	})
}

func (s *RedisMailService) SendWelcome(ctx context.Context, recipient, displayName string) error {
	return s.enqueue(ctx, MailJob{
		ID:          uuid.NewString(),
		Type:        MailTypeWelcome,
		Recipient:   recipient,
		DisplayName: displayName,
	})
}

func (s *RedisMailService) enqueue(ctx context.Context, job MailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return common.Errorf("failed to marshal mail job: %w", err)
	}
	if err := s.rdb.LPush(ctx, s.queueName, payload).Err(); err != nil {
		return common.Errorf("failed to push mail job to Redis queue: %w", err)
	}
	log.Printf("Mail job %s (%s) for %s enqueued successfully.", job.ID, job.Type, job.Recipient)
	return nil
}
