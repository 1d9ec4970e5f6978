package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/minutesflow/internal/models"
	"github.com/Lllllllleong/minutesflow/internal/services"
)

var (
	pipelineInstance *services.PipelineFunction
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the HTTP function with the framework.
	// "HandleTranscriptWebhook" is the entry point name configured in GCP.
	functions.HTTP("HandleTranscriptWebhook", handleTranscriptWebhook)
}

// main is required by the Go Functions Framework.
func main() {}

// handleTranscriptWebhook is the HTTP handler for the transcript webhook.
func handleTranscriptWebhook(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		pipelineInstance, initErr = services.NewPipeline(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		writeJSON(w, http.StatusInternalServerError, &models.WebhookResponse{
			Status:  "error",
			Message: "failed to initialize service",
		})
		return
	}

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, &models.WebhookResponse{
			Status:  "error",
			Message: "method not allowed",
		})
		return
	}

	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Error("Could not decode webhook body", "error", err)
		writeJSON(w, http.StatusBadRequest, &models.WebhookResponse{
			Status:  "error",
			Message: "could not parse JSON",
		})
		return
	}

	// Validation failures are rejected before any record is created.
	if err := payload.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, &models.WebhookResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	res, err := pipelineInstance.Ingest(r.Context(), &payload)
	if err != nil {
		slog.Error("Webhook ingestion failed before a record was processed", "error", err)
		writeJSON(w, http.StatusInternalServerError, &models.WebhookResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
