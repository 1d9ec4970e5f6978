// Package store is the keyed persistence layer: the singleton Settings
// document and the MinutesRecord collection, both in Firestore.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/minutesflow/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrSettingsNotFound reports that no settings document exists yet.
var ErrSettingsNotFound = errors.New("settings not found")

// ErrRecordNotFound reports an unknown minutes record id.
var ErrRecordNotFound = errors.New("minutes record not found")

// settingsDocID is the fixed document ID of the singleton settings row.
const settingsDocID = "default"

// Store wraps the Firestore collections used by all services.
type Store struct {
	client             *firestore.Client
	settingsCollection string
	minutesCollection  string
}

// New creates a Store over the given Firestore client and collection names.
func New(client *firestore.Client, settingsCollection, minutesCollection string) *Store {
	return &Store{
		client:             client,
		settingsCollection: settingsCollection,
		minutesCollection:  minutesCollection,
	}
}

func (s *Store) settingsRef() *firestore.DocumentRef {
	return s.client.Collection(s.settingsCollection).Doc(settingsDocID)
}

// GetSettings reads the singleton settings document. A missing document is
// reported as ErrSettingsNotFound; the pipeline treats that as fatal for the
// record rather than creating defaults mid-run.
func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	snap, err := s.settingsRef().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var settings models.Settings
	if err := snap.DataTo(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &settings, nil
}

// EnsureSettings returns the settings, lazily creating the default document
// when none exists. Only the settings read path uses this.
func (s *Store) EnsureSettings(ctx context.Context) (*models.Settings, error) {
	settings, err := s.GetSettings(ctx)
	if errors.Is(err, ErrSettingsNotFound) {
		defaults := models.DefaultSettings()
		if err := s.SaveSettings(ctx, defaults); err != nil {
			return nil, err
		}
		log.Printf("Initialized default settings document.")
		return defaults, nil
	}
	return settings, err
}

// SaveSettings replaces the singleton settings document and stamps UpdatedAt.
func (s *Store) SaveSettings(ctx context.Context, settings *models.Settings) error {
	settings.UpdatedAt = time.Now().UTC()
	if _, err := s.settingsRef().Set(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// CreateMinutes persists a new record and returns its store-assigned ID.
func (s *Store) CreateMinutes(ctx context.Context, rec *models.MinutesRecord) (string, error) {
	docRef, _, err := s.client.Collection(s.minutesCollection).Add(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("failed to create minutes record: %w", err)
	}
	return docRef.ID, nil
}

// GetMinutes reads one record by id.
func (s *Store) GetMinutes(ctx context.Context, id string) (*models.MinutesRecord, error) {
	snap, err := s.client.Collection(s.minutesCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read minutes record %s: %w", id, err)
	}

	var rec models.MinutesRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode minutes record %s: %w", id, err)
	}
	return &rec, nil
}

// ListedRecord pairs a record with its document ID for listings.
type ListedRecord struct {
	ID     string
	Record models.MinutesRecord
}

// ListMinutes returns all records newest-first by receipt time. The history
// is one team's meeting log; filtering and paging happen in memory above.
func (s *Store) ListMinutes(ctx context.Context) ([]ListedRecord, error) {
	docs, err := s.client.Collection(s.minutesCollection).
		OrderBy("receivedAt", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list minutes records: %w", err)
	}

	listed := make([]ListedRecord, 0, len(docs))
	for _, doc := range docs {
		var rec models.MinutesRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode minutes record %s: %w", doc.Ref.ID, err)
		}
		listed = append(listed, ListedRecord{ID: doc.Ref.ID, Record: rec})
	}
	return listed, nil
}

// MarkMinutesProcessing transitions a record to processing.
func (s *Store) MarkMinutesProcessing(ctx context.Context, id string) error {
	return s.updateMinutes(ctx, id, []firestore.Update{
		{Path: "status", Value: models.StatusProcessing},
	})
}

// MarkMinutesFailed transitions a record to its terminal failed state and
// records the error text.
func (s *Store) MarkMinutesFailed(ctx context.Context, id, errMsg string) error {
	return s.updateMinutes(ctx, id, []firestore.Update{
		{Path: "status", Value: models.StatusFailed},
		{Path: "errorMessage", Value: errMsg},
	})
}

// Completion carries the fields persisted when a record completes.
type Completion struct {
	ProcessedAt    time.Time
	AIProvider     string
	AIModel        string
	GeneratedTitle string
	PublishedURL   string
}

// CompleteMinutes transitions a record to its terminal completed state.
func (s *Store) CompleteMinutes(ctx context.Context, id string, c Completion) error {
	return s.updateMinutes(ctx, id, []firestore.Update{
		{Path: "status", Value: models.StatusCompleted},
		{Path: "processedAt", Value: c.ProcessedAt},
		{Path: "aiProvider", Value: c.AIProvider},
		{Path: "aiModel", Value: c.AIModel},
		{Path: "generatedTitle", Value: c.GeneratedTitle},
		{Path: "publishedUrl", Value: c.PublishedURL},
	})
}

func (s *Store) updateMinutes(ctx context.Context, id string, updates []firestore.Update) error {
	if _, err := s.client.Collection(s.minutesCollection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update minutes record %s: %w", id, err)
	}
	return nil
}
