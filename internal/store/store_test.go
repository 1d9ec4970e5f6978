package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/minutesflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmulatorStore connects to a local Firestore emulator and returns a Store
// over fresh, test-scoped collection names. Skips when no emulator is running.
func newEmulatorStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; skipping emulator test")
	}

	client, err := firestore.NewClient(context.Background(), "minutesflow-test")
	require.NoError(t, err, "failed to connect to the firestore emulator")
	t.Cleanup(func() { client.Close() })

	suffix := time.Now().UnixNano()
	return New(client,
		fmt.Sprintf("settings-test-%d", suffix),
		fmt.Sprintf("minutes-test-%d", suffix))
}

func TestGetSettingsMissing(t *testing.T) {
	s := newEmulatorStore(t)

	_, err := s.GetSettings(context.Background())
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

func TestEnsureSettingsCreatesDefaults(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	settings, err := s.EnsureSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogleGemini, settings.AIProvider)
	assert.NotEmpty(t, settings.GoogleGeminiModel)

	// The document now exists, so the strict read succeeds too.
	stored, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.AIProvider, stored.AIProvider)
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.AIProvider = models.ProviderOpenAIChatGPT
	settings.NotionParentPageID = "1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a"
	require.NoError(t, s.SaveSettings(ctx, settings))
	assert.False(t, settings.UpdatedAt.IsZero(), "SaveSettings stamps UpdatedAt")

	stored, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderOpenAIChatGPT, stored.AIProvider)
	assert.Equal(t, settings.NotionParentPageID, stored.NotionParentPageID)
}

func TestMinutesLifecycle(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	id, err := s.CreateMinutes(ctx, &models.MinutesRecord{
		SourceTitle: "Standup",
		ReceivedAt:  time.Now().UTC(),
		RawPayload:  `{"title":"Standup"}`,
		Status:      models.StatusPending,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.MarkMinutesProcessing(ctx, id))
	rec, err := s.GetMinutes(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, rec.Status)

	processedAt := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, s.CompleteMinutes(ctx, id, Completion{
		ProcessedAt:    processedAt,
		AIProvider:     models.ProviderGoogleGemini,
		AIModel:        "gemini-2.5-pro-exp-03-25",
		GeneratedTitle: "進捗共有",
		PublishedURL:   "https://www.notion.so/p",
	}))

	rec, err = s.GetMinutes(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, rec.Status)
	assert.Equal(t, "進捗共有", rec.GeneratedTitle)
	assert.Equal(t, "https://www.notion.so/p", rec.PublishedURL)
	require.NotNil(t, rec.ProcessedAt)
	assert.Equal(t, processedAt, rec.ProcessedAt.UTC())
	assert.Equal(t, "Standup", rec.SourceTitle, "completion leaves ingest fields untouched")
}

func TestMarkMinutesFailed(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	id, err := s.CreateMinutes(ctx, &models.MinutesRecord{
		ReceivedAt: time.Now().UTC(),
		Status:     models.StatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, s.MarkMinutesFailed(ctx, id, "設定が見つかりません"))
	rec, err := s.GetMinutes(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, rec.Status)
	assert.Equal(t, "設定が見つかりません", rec.ErrorMessage)
	assert.Empty(t, rec.PublishedURL, "failure records no publication fields")
}

func TestGetMinutesNotFound(t *testing.T) {
	s := newEmulatorStore(t)

	_, err := s.GetMinutes(context.Background(), "no-such-doc")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestListMinutesNewestFirst(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.CreateMinutes(ctx, &models.MinutesRecord{
			SourceTitle: fmt.Sprintf("meeting %d", i),
			ReceivedAt:  base.Add(time.Duration(i) * time.Minute),
			Status:      models.StatusPending,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	listed, err := s.ListMinutes(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, ids[2], listed[0].ID, "latest receipt comes first")
	assert.Equal(t, ids[0], listed[2].ID)
}
