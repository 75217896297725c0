package service

import (
	"context"
	"encoding/json"

	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/mailer"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Notifier enqueues outbound mail. Enqueue is best-effort: a notification
// that cannot be queued is logged and dropped, the surrounding state
// transition still commits.
type Notifier interface {
	EnqueueMail(ctx context.Context, msg mailer.Message)
}

// RedisOutbox pushes messages onto the Redis list drained by the mail worker.
type RedisOutbox struct {
	rdb *redis.Client
	log zerolog.Logger
}

var _ Notifier = (*RedisOutbox)(nil)

// NewRedisOutbox creates a RedisOutbox.
func NewRedisOutbox(rdb *redis.Client, log zerolog.Logger) *RedisOutbox {
	return &RedisOutbox{
		rdb: rdb,
		log: log.With().Str("component", "mail_outbox").Logger(),
	}
}

// EnqueueMail appends the message to the outbox queue.
func (o *RedisOutbox) EnqueueMail(ctx context.Context, msg mailer.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		o.log.Error().Err(err).Msg("Marshal mail message")
		return
	}
	if err := o.rdb.RPush(ctx, config.CacheKey.MailOutboxQueue(), payload).Err(); err != nil {
		o.log.Warn().Err(err).Str("to", msg.ToAddr).Msg("Enqueue mail")
	}
}
