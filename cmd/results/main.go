package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/minutesflow/internal/services"
	"github.com/Lllllllleong/minutesflow/internal/store"
)

var (
	resultsInstance *services.ResultsFunction
	once            sync.Once
	initErr         error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the HTTP function with the framework.
	// "HandleResults" is the entry point name configured in GCP.
	functions.HTTP("HandleResults", handleResults)
}

// main is required by the Go Functions Framework.
func main() {}

// handleResults serves the results UI API:
//
//	GET /api/status/{id}    status-polling view of one record
//	GET /api/history/{id}   full detail view of one record
//	GET /api/histories      paginated listing (page, per_page, status)
func handleResults(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		resultsInstance, initErr = services.NewResults(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/status/"):
		handleStatus(w, r, strings.TrimPrefix(path, "/api/status/"))
	case strings.HasPrefix(path, "/api/history/"):
		handleHistory(w, r, strings.TrimPrefix(path, "/api/history/"))
	case path == "/api/histories":
		handleHistories(w, r)
	default:
		writeError(w, http.StatusNotFound, "unknown results endpoint")
	}
}

func handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	res, err := resultsInstance.Status(r.Context(), id)
	if errors.Is(err, store.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("History with ID %s not found", id))
		return
	}
	if err != nil {
		slog.Error("Failed to read record status", "historyId", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read record status")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func handleHistory(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := resultsInstance.History(r.Context(), id)
	if errors.Is(err, store.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("History with ID %s not found", id))
		return
	}
	if err != nil {
		slog.Error("Failed to read history record", "historyId", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history record")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func handleHistories(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)
	statusFilter := r.URL.Query().Get("status")

	res, err := resultsInstance.ListHistories(r.Context(), page, perPage, statusFilter)
	if err != nil {
		slog.Error("Failed to list histories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list histories")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
