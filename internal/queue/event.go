// Package queue defines message payloads exchanged over the message broker.
package queue

// HelpRequestOpenedEvent is published when a help request is created. It
// carries enough for downstream consumers to notify or log without querying
// the primary database.
type HelpRequestOpenedEvent struct {
	RequestID   uint64 `json:"request_id"`
	Reference   string `json:"reference"`
	UserID      uint64 `json:"user_id"`
	UserName    string `json:"user_name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
	OpenedAt    string `json:"opened_at"`
}
