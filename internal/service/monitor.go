package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SessionEventType enumerates proctor monitor events.
type SessionEventType string

const (
	EventRegistered SessionEventType = "REGISTERED"
	EventVerified   SessionEventType = "VERIFIED"
	EventFlagged    SessionEventType = "FLAGGED"
	EventStarted    SessionEventType = "STARTED"
	EventCompleted  SessionEventType = "COMPLETED"
	EventViolation  SessionEventType = "VIOLATION"
)

// SessionEvent is a session lifecycle notification fanned out to the
// instructor monitor.
type SessionEvent struct {
	Type      SessionEventType    `json:"type"`
	SessionID uuid.UUID           `json:"session_id"`
	StudentID uuid.UUID           `json:"student_id"`
	CourseID  uuid.UUID           `json:"course_id"`
	ExamCode  string              `json:"exam_code"`
	Status    model.SessionStatus `json:"status"`
	Detail    string              `json:"detail,omitempty"`
	At        time.Time           `json:"at"`
}

// SessionEventSink receives lifecycle events and exam-start cache writes.
// Both are best-effort: implementations log failures and never return them,
// so a monitoring hiccup cannot fail a state transition.
type SessionEventSink interface {
	Publish(ctx context.Context, ev SessionEvent)
	CacheExamStart(ctx context.Context, sessionID uuid.UUID, startedAt time.Time, duration time.Duration)
}

// RedisSessionSink publishes events on the per-course monitor channel and
// caches exam start instants for fast remaining-time reads.
type RedisSessionSink struct {
	rdb *redis.Client
	log zerolog.Logger
}

var _ SessionEventSink = (*RedisSessionSink)(nil)

// NewRedisSessionSink creates a RedisSessionSink.
func NewRedisSessionSink(rdb *redis.Client, log zerolog.Logger) *RedisSessionSink {
	return &RedisSessionSink{
		rdb: rdb,
		log: log.With().Str("component", "session_sink").Logger(),
	}
}

// Publish fans the event out on the course monitor channel.
func (s *RedisSessionSink) Publish(ctx context.Context, ev SessionEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal session event")
		return
	}
	channel := config.CacheKey.CourseMonitorChannel(ev.CourseID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Publish session event")
	}
}

// CacheExamStart stores the start instant, expiring shortly after the window
// would close so stale entries clean themselves up.
func (s *RedisSessionSink) CacheExamStart(ctx context.Context, sessionID uuid.UUID, startedAt time.Time, duration time.Duration) {
	key := config.CacheKey.SessionStartKey(sessionID.String())
	ttl := duration + 10*time.Minute
	if err := s.rdb.Set(ctx, key, startedAt.Unix(), ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Cache exam start")
	}
}
