package models

import "time"

// RejectEvent reports a record that did not reach the table. It identifies
// the message but carries no payload.
type RejectEvent struct {
	RunID      string    `json:"run_id"`
	MessageID  string    `json:"message_id"`
	Stage      string    `json:"stage"`
	Code       string    `json:"code"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
