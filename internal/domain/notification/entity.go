package notification

import "time"

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Message is the fire-and-forget payload handed to the sink. One
// notification row is stored per recipient.
type Message struct {
	Recipients        []string
	Severity          Severity
	Title             string
	Body              string
	RelatedEntityKind string
	RelatedEntityID   string
}

type Notification struct {
	ID                string
	RecipientID       string
	Severity          Severity
	Title             string
	Body              string
	RelatedEntityKind string
	RelatedEntityID   string
	ReadAt            *time.Time
	CreatedAt         time.Time
}
