package services

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/minutesflow/internal/gcp"
	"github.com/Lllllllleong/minutesflow/internal/models"
	"github.com/Lllllllleong/minutesflow/internal/store"
)

// SettingsStore is what the settings service needs from persistence.
type SettingsStore interface {
	EnsureSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, settings *models.Settings) error
}

// SettingsFunction serves the settings read/replace interface. The read path
// lazily creates the default document; the pipeline never does.
type SettingsFunction struct {
	store SettingsStore
}

// NewSettingsService creates a SettingsFunction instance.
func NewSettingsService(ctx context.Context) (*SettingsFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &SettingsFunction{
		store: store.New(firestoreClient,
			gcp.GetEnv("SETTINGS_COLLECTION", "settings"),
			gcp.GetEnv("MINUTES_COLLECTION", "minutes")),
	}, nil
}

// Get returns the current settings, creating defaults on first read.
func (f *SettingsFunction) Get(ctx context.Context) (*models.Settings, error) {
	return f.store.EnsureSettings(ctx)
}

// Update replaces the settings document. The provider tag is validated here
// so a typo surfaces to the settings UI instead of failing later runs.
func (f *SettingsFunction) Update(ctx context.Context, settings *models.Settings) (*models.Settings, error) {
	if _, err := settings.ResolveModel(); err != nil {
		return nil, err
	}
	if err := f.store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
