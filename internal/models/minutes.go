package models

import "time"

// MinutesRecord statuses. A record moves pending -> processing and then to
// exactly one terminal status; nothing transitions out of completed or failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// MinutesRecord tracks one webhook-triggered minutes-generation attempt in
// Firestore. The Firestore document ID is the record's opaque identity.
type MinutesRecord struct {
	SourceTitle        string     `firestore:"sourceTitle"`
	SourceCreationTime *time.Time `firestore:"sourceCreationTime,omitempty"`
	ReceivedAt         time.Time  `firestore:"receivedAt"`
	ProcessedAt        *time.Time `firestore:"processedAt,omitempty"`
	AIProvider         string     `firestore:"aiProvider,omitempty"`
	AIModel            string     `firestore:"aiModel,omitempty"`
	GeneratedTitle     string     `firestore:"generatedTitle,omitempty"`
	PublishedURL       string     `firestore:"publishedUrl,omitempty"`
	RawPayload         string     `firestore:"rawPayload,omitempty"`
	Status             string     `firestore:"status"`
	ErrorMessage       string     `firestore:"errorMessage,omitempty"`
}

// creationTimeLayout is the wire format Notta sends for creation_time.
const creationTimeLayout = "2006-01-02 15:04:05"

// ParseCreationTime parses the payload's creation_time field. A malformed or
// empty value yields nil; a bad timestamp must never fail ingestion.
func ParseCreationTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(creationTimeLayout, raw)
	if err != nil {
		return nil
	}
	return &t
}
