// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// AuditQueueName is the durable queue audit entries are mirrored to.
const AuditQueueName = "audit.recorded"

// AuditRecordedEvent is published after an audit entry is durably
// written. It carries enough information for downstream consumers to
// log or notify without querying the primary database.
type AuditRecordedEvent struct {
	LogID       uint64 `json:"log_id"`
	UserID      uint64 `json:"user_id"`
	Username    string `json:"username"`
	Action      string `json:"action"`
	EntityType  string `json:"entity_type"`
	EntityID    uint64 `json:"entity_id,omitempty"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}
