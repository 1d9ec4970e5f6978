package services

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/minutesflow/internal/gcp"
	"github.com/Lllllllleong/minutesflow/internal/models"
	"github.com/Lllllllleong/minutesflow/internal/store"
)

// HistoryStore is what the results service needs from persistence.
type HistoryStore interface {
	GetMinutes(ctx context.Context, id string) (*models.MinutesRecord, error)
	ListMinutes(ctx context.Context) ([]store.ListedRecord, error)
}

// ResultsFunction serves the status-polling and history-listing interface.
type ResultsFunction struct {
	store HistoryStore
}

// NewResults creates a ResultsFunction instance.
func NewResults(ctx context.Context) (*ResultsFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &ResultsFunction{
		store: store.New(firestoreClient,
			gcp.GetEnv("SETTINGS_COLLECTION", "settings"),
			gcp.GetEnv("MINUTES_COLLECTION", "minutes")),
	}, nil
}

// Status returns the polling view of one record, or store.ErrRecordNotFound.
func (f *ResultsFunction) Status(ctx context.Context, id string) (*models.StatusResponse, error) {
	rec, err := f.store.GetMinutes(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.StatusResponse{
		ID:             id,
		Status:         rec.Status,
		SourceTitle:    rec.SourceTitle,
		GeneratedTitle: rec.GeneratedTitle,
		ProcessedAt:    rec.ProcessedAt,
		PublishedURL:   rec.PublishedURL,
		ErrorMessage:   rec.ErrorMessage,
	}, nil
}

// History returns the full detail view of one record.
func (f *ResultsFunction) History(ctx context.Context, id string) (*models.HistoryEntry, error) {
	rec, err := f.store.GetMinutes(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := historyEntry(store.ListedRecord{ID: id, Record: *rec})
	return &entry, nil
}

// ListHistories returns one page of the history, newest first, optionally
// filtered by status.
func (f *ResultsFunction) ListHistories(ctx context.Context, page, perPage int, statusFilter string) (*models.HistoryListResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	listed, err := f.store.ListMinutes(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []store.ListedRecord
	for _, lr := range listed {
		if statusFilter == "" || lr.Record.Status == statusFilter {
			filtered = append(filtered, lr)
		}
	}

	total := len(filtered)
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	if start > total {
		start = total
	}

	data := make([]models.HistoryEntry, 0, end-start)
	for _, lr := range filtered[start:end] {
		data = append(data, historyEntry(lr))
	}

	return &models.HistoryListResponse{
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
		Data:       data,
	}, nil
}

func historyEntry(lr store.ListedRecord) models.HistoryEntry {
	return models.HistoryEntry{
		ID:                 lr.ID,
		SourceTitle:        lr.Record.SourceTitle,
		SourceCreationTime: lr.Record.SourceCreationTime,
		ReceivedAt:         lr.Record.ReceivedAt,
		ProcessedAt:        lr.Record.ProcessedAt,
		AIProvider:         lr.Record.AIProvider,
		AIModel:            lr.Record.AIModel,
		GeneratedTitle:     lr.Record.GeneratedTitle,
		PublishedURL:       lr.Record.PublishedURL,
		Status:             lr.Record.Status,
		ErrorMessage:       lr.Record.ErrorMessage,
	}
}
