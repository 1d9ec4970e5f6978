package models

import (
	"fmt"
	"time"
)

// These structs define the JSON payloads exchanged with the webhook caller,
// the results UI, and the settings UI.

// WebhookPayload is the inbound transcript payload (Notta via Zapier).
type WebhookPayload struct {
	Content      string   `json:"content"`
	Title        string   `json:"title"`
	CreationTime string   `json:"creation_time,omitempty"`
	Speakers     []string `json:"speakers,omitempty"`
}

// Validate checks the required fields. A payload failing validation is
// rejected before any record is created.
func (p *WebhookPayload) Validate() error {
	if p.Content == "" {
		return fmt.Errorf("missing required field: content")
	}
	if p.Title == "" {
		return fmt.Errorf("missing required field: title")
	}
	return nil
}

// WebhookResponse is returned to the webhook caller.
type WebhookResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	HistoryID string `json:"history_id,omitempty"`
}

// StatusResponse is the status-polling view of one MinutesRecord.
type StatusResponse struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	SourceTitle    string     `json:"source_title"`
	GeneratedTitle string     `json:"generated_title,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	PublishedURL   string     `json:"published_url,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
}

// HistoryEntry is one row in the paginated history listing.
type HistoryEntry struct {
	ID                 string     `json:"id"`
	SourceTitle        string     `json:"source_title"`
	SourceCreationTime *time.Time `json:"source_creation_time,omitempty"`
	ReceivedAt         time.Time  `json:"received_at"`
	ProcessedAt        *time.Time `json:"processed_at,omitempty"`
	AIProvider         string     `json:"ai_provider,omitempty"`
	AIModel            string     `json:"ai_model,omitempty"`
	GeneratedTitle     string     `json:"generated_title,omitempty"`
	PublishedURL       string     `json:"published_url,omitempty"`
	Status             string     `json:"status"`
	ErrorMessage       string     `json:"error_message,omitempty"`
}

// HistoryListResponse is the paginated history listing.
type HistoryListResponse struct {
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
	Data       []HistoryEntry `json:"data"`
}
