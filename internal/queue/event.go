// Package queue defines message payloads exchanged over the message broker.
package queue

// NotificationQueueName is the durable queue both the publisher and the
// consumer declare.
const NotificationQueueName = "notification.send"

// NotificationEvent is published whenever the booking flow wants to
// reach a customer: checkout accepted, payment settled, reservation
// expired, confirmation code issued. Downstream consumers deliver it
// over whatever channel they own without querying the primary database.
type NotificationEvent struct {
	UserID  uint64 `json:"user_id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	SentAt  string `json:"sent_at"`
}
