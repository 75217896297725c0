// Package mailer delivers notification email. Delivery is best-effort:
// failures are logged and retried by the outbox worker, never propagated
// back into the state transition that produced the message.
package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	ToName   string `json:"to_name"`
	ToAddr   string `json:"to_addr"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
}

// Mailer is any service that can send a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
