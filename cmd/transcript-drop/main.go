package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/minutesflow/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	dropInstance *services.DropFunction
	once         sync.Once
	initErr      error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes GCS
	// object-finalized events here.
	functions.CloudEvent("IngestTranscriptDrop", ingestTranscriptDrop)
}

// main is required by the Go Functions Framework.
func main() {}

// ingestTranscriptDrop is the CloudEvent entry point: a transcript payload
// file finalized in the drop bucket goes through the same pipeline as the
// webhook.
func ingestTranscriptDrop(ctx context.Context, e cloudevents.Event) error {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		dropInstance, initErr = services.NewDrop(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Errors are logged with context inside Process; returning one marks the
	// invocation as failed.
	return dropInstance.Process(ctx, gcsEvent)
}
