package config

import "fmt"

// CacheKey centralizes every Redis key and channel name so the services,
// workers and handlers cannot drift apart on naming.
var CacheKey = keyring{}

type keyring struct{}

// MailOutboxQueue is the list the notification outbox pushes to and the
// mail worker drains.
func (keyring) MailOutboxQueue() string {
	return "mail_outbox_queue"
}

// SessionStartKey holds a session's recorded exam start instant.
func (keyring) SessionStartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:exam_start", sessionID)
}

// CourseMonitorChannel is the pub/sub channel carrying a course's session
// lifecycle events to proctor monitors.
func (keyring) CourseMonitorChannel(courseID string) string {
	return fmt.Sprintf("course:%s:monitor", courseID)
}
