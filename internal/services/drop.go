package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/minutesflow/internal/gcp"
	"github.com/Lllllllleong/minutesflow/internal/models"
)

// GCSEvent is the payload of a GCS object-finalized event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// ObjectReader reads dropped payload files from object storage.
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, object string) ([]byte, error)
}

type gcsObjectReader struct {
	client *storage.Client
}

func (r *gcsObjectReader) ReadObject(ctx context.Context, bucket, object string) ([]byte, error) {
	return gcp.ReadGCSObject(ctx, r.client, bucket, object)
}

// DropFunction ingests transcript payload files dropped into a GCS bucket,
// feeding them through the same pipeline as the webhook.
type DropFunction struct {
	reader   ObjectReader
	pipeline *PipelineFunction
}

// NewDrop creates a DropFunction instance.
func NewDrop(ctx context.Context) (*DropFunction, error) {
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	pipeline, err := NewPipeline(ctx)
	if err != nil {
		return nil, err
	}

	return &DropFunction{
		reader:   &gcsObjectReader{client: storageClient},
		pipeline: pipeline,
	}, nil
}

// Process reads the dropped object as a webhook payload and runs the
// pipeline. Undecodable or invalid files fail here, before any record exists.
func (f *DropFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("bucket", e.Bucket, "object", e.Name)
	logCtx.Info("Processing transcript drop.")

	data, err := f.reader.ReadObject(ctx, e.Bucket, e.Name)
	if err != nil {
		logCtx.Error("Failed to read dropped transcript.", "error", err)
		return err
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logCtx.Error("Dropped file is not a valid payload.", "error", err)
		return fmt.Errorf("failed to decode transcript drop gs://%s/%s: %w", e.Bucket, e.Name, err)
	}
	if err := payload.Validate(); err != nil {
		logCtx.Error("Dropped payload failed validation.", "error", err)
		return fmt.Errorf("invalid transcript drop gs://%s/%s: %w", e.Bucket, e.Name, err)
	}

	res, err := f.pipeline.Ingest(ctx, &payload)
	if err != nil {
		return err
	}
	logCtx.Info("Transcript drop ingested.", "historyId", res.HistoryID)
	return nil
}
