package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/minutesflow/internal/ai"
	"github.com/Lllllllleong/minutesflow/internal/gcp"
	"github.com/Lllllllleong/minutesflow/internal/models"
	"github.com/Lllllllleong/minutesflow/internal/notion"
	"github.com/Lllllllleong/minutesflow/internal/store"
)

// settingsNotFoundMessage is the fixed error text recorded when the pipeline
// finds no settings document.
const settingsNotFoundMessage = "設定が見つかりません"

// RecordStore is what the pipeline needs from persistence.
type RecordStore interface {
	CreateMinutes(ctx context.Context, rec *models.MinutesRecord) (string, error)
	MarkMinutesProcessing(ctx context.Context, id string) error
	MarkMinutesFailed(ctx context.Context, id, errMsg string) error
	CompleteMinutes(ctx context.Context, id string, c store.Completion) error
	GetSettings(ctx context.Context) (*models.Settings, error)
}

// MinutesGenerator produces minutes text and a short title from a transcript.
type MinutesGenerator interface {
	Generate(ctx context.Context, provider string, req *ai.Request) (*ai.Result, error)
}

// MinutesPublisher writes generated minutes into the document service.
type MinutesPublisher interface {
	Publish(ctx context.Context, req *notion.PublishRequest) (*notion.PublishResult, error)
}

// PipelineConfig holds all configuration for the pipeline service.
type PipelineConfig struct {
	ProjectID          string
	VertexAIRegion     string
	SettingsCollection string
	MinutesCollection  string
	ArchiveBucket      string
}

// loadPipelineConfig loads and validates the environment for this service.
func loadPipelineConfig() (*PipelineConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	return &PipelineConfig{
		ProjectID:          projectID,
		VertexAIRegion:     gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		SettingsCollection: gcp.GetEnv("SETTINGS_COLLECTION", "settings"),
		MinutesCollection:  gcp.GetEnv("MINUTES_COLLECTION", "minutes"),
		ArchiveBucket:      gcp.GetEnv("MINUTES_ARCHIVE_BUCKET", ""),
	}, nil
}

// PipelineFunction drives one MinutesRecord from creation to a terminal
// state, synchronously, within the handling of one inbound request.
type PipelineFunction struct {
	store     RecordStore
	generator MinutesGenerator
	publisher MinutesPublisher
	archiver  *Archiver
	config    PipelineConfig
}

// NewPipeline creates a PipelineFunction instance. All credentials come from
// the environment here, at construction time; nothing reads keys later.
func NewPipeline(ctx context.Context) (*PipelineFunction, error) {
	config, err := loadPipelineConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, err
	}

	generator, err := ai.NewClient(ctx, ai.Config{
		GoogleProjectID: config.ProjectID,
		VertexAIRegion:  config.VertexAIRegion,
		AnthropicAPIKey: gcp.GetEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    gcp.GetEnv("OPENAI_API_KEY", ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ai client: %w", err)
	}

	// Publication stays disabled without a key; attempting to publish then
	// fails the record with the missing-key message.
	var publisher MinutesPublisher
	if notionAPIKey := gcp.GetEnv("NOTION_API_KEY", ""); notionAPIKey != "" {
		p, err := notion.NewPublisher(notionAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create notion publisher: %w", err)
		}
		publisher = p
	}

	var archiver *Archiver
	if config.ArchiveBucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		archiver = NewArchiver(storageClient, config.ArchiveBucket)
	}

	return &PipelineFunction{
		store:     store.New(firestoreClient, config.SettingsCollection, config.MinutesCollection),
		generator: generator,
		publisher: publisher,
		archiver:  archiver,
		config:    *config,
	}, nil
}

// Ingest creates the pending record and runs the pipeline synchronously.
// The caller sees success once the record exists and the run has finished;
// downstream failure detail lives on the record, visible via status polling.
func (f *PipelineFunction) Ingest(ctx context.Context, payload *models.WebhookPayload) (*models.WebhookResponse, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}

	rec := &models.MinutesRecord{
		SourceTitle:        payload.Title,
		SourceCreationTime: models.ParseCreationTime(payload.CreationTime),
		ReceivedAt:         time.Now().UTC(),
		RawPayload:         string(raw),
		Status:             models.StatusPending,
	}

	// Durability point: the record exists before any external call is made.
	id, err := f.store.CreateMinutes(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create minutes record: %w", err)
	}

	f.process(ctx, id, rec, payload)

	return &models.WebhookResponse{
		Status:    "success",
		Message:   "Webhook received successfully",
		HistoryID: id,
	}, nil
}

// process runs the state machine for one record. Every failure along the way
// is converted into a persisted failed state; a secondary failure while
// recording a failure is logged and swallowed, never re-raised.
func (f *PipelineFunction) process(ctx context.Context, id string, rec *models.MinutesRecord, payload *models.WebhookPayload) {
	logCtx := slog.With("historyId", id)
	logCtx.Info("Starting minutes pipeline.", "sourceTitle", rec.SourceTitle)

	if err := f.store.MarkMinutesProcessing(ctx, id); err != nil {
		f.recordFailure(ctx, logCtx, id, err.Error())
		return
	}

	// --- 1. Load settings; absence is fatal for this record ---
	settings, err := f.store.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, store.ErrSettingsNotFound) {
			f.recordFailure(ctx, logCtx, id, settingsNotFoundMessage)
		} else {
			f.recordFailure(ctx, logCtx, id, err.Error())
		}
		return
	}

	// --- 2. Resolve provider and model (read-once snapshot) ---
	model, err := settings.ResolveModel()
	if err != nil {
		f.recordFailure(ctx, logCtx, id, err.Error())
		return
	}
	logCtx.Info("Using AI provider.", "provider", settings.AIProvider, "model", model)

	// --- 3. Generate the minutes ---
	result, err := f.generator.Generate(ctx, settings.AIProvider, &ai.Request{
		Content:      payload.Content,
		Title:        payload.Title,
		CreationTime: payload.CreationTime,
		Speakers:     payload.Speakers,
		Model:        model,
		ThinkingMode: settings.ThinkingMode(),
	})
	if err != nil {
		f.recordFailure(ctx, logCtx, id, err.Error())
		return
	}

	// --- 4. Publish to Notion, unless no parent page is configured ---
	var publishedURL string
	switch {
	case settings.NotionParentPageID == "":
		logCtx.Warn("No Notion parent page configured. Skipping publication.")
	case f.publisher == nil:
		f.recordFailure(ctx, logCtx, id, "Notion連携エラー: Notion APIキーが設定されていません")
		return
	default:
		pub, err := f.publisher.Publish(ctx, &notion.PublishRequest{
			Title:              result.GeneratedTitle,
			Body:               result.Minutes,
			SourceTitle:        rec.SourceTitle,
			SourceCreationTime: rec.SourceCreationTime,
			ParentPageID:       settings.NotionParentPageID,
		})
		if err != nil {
			// The page may exist partially populated; the failure still wins.
			f.recordFailure(ctx, logCtx, id, fmt.Sprintf("Notion連携エラー: %v", err))
			return
		}
		publishedURL = pub.URL
		logCtx.Info("Notion publication complete.", "url", publishedURL)
	}

	// --- 5. Best-effort archive; never changes the record's outcome ---
	if f.archiver != nil {
		if err := f.archiver.Archive(ctx, id, rec.RawPayload, result.Minutes); err != nil {
			logCtx.Warn("Failed to archive minutes artifacts.", "error", err)
		}
	}

	// --- 6. Terminal success ---
	if err := f.store.CompleteMinutes(ctx, id, store.Completion{
		ProcessedAt:    time.Now().UTC(),
		AIProvider:     settings.AIProvider,
		AIModel:        model,
		GeneratedTitle: result.GeneratedTitle,
		PublishedURL:   publishedURL,
	}); err != nil {
		f.recordFailure(ctx, logCtx, id, err.Error())
		return
	}
	logCtx.Info("Minutes pipeline completed.")
}

func (f *PipelineFunction) recordFailure(ctx context.Context, logCtx *slog.Logger, id, msg string) {
	logCtx.Error("Minutes pipeline failed.", "error", msg)
	if err := f.store.MarkMinutesFailed(ctx, id, msg); err != nil {
		// The HTTP response may already be gone; the record simply keeps its
		// last persisted status.
		logCtx.Error("CRITICAL: Failed to record pipeline failure.", "updateError", err)
	}
}
