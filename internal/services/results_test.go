package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Lllllllleong/minutesflow/internal/models"
	"github.com/Lllllllleong/minutesflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistoryStore struct {
	records []store.ListedRecord
	listErr error
}

func (f *fakeHistoryStore) GetMinutes(ctx context.Context, id string) (*models.MinutesRecord, error) {
	for _, lr := range f.records {
		if lr.ID == id {
			rec := lr.Record
			return &rec, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (f *fakeHistoryStore) ListMinutes(ctx context.Context) ([]store.ListedRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

// seededHistory builds n records newest-first, alternating completed/failed,
// the way ListMinutes returns them.
func seededHistory(n int) []store.ListedRecord {
	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	records := make([]store.ListedRecord, 0, n)
	for i := 0; i < n; i++ {
		status := models.StatusCompleted
		if i%2 == 1 {
			status = models.StatusFailed
		}
		records = append(records, store.ListedRecord{
			ID: fmt.Sprintf("rec-%02d", i),
			Record: models.MinutesRecord{
				SourceTitle: fmt.Sprintf("meeting %d", i),
				ReceivedAt:  base.Add(-time.Duration(i) * time.Hour),
				Status:      status,
			},
		})
	}
	return records
}

func TestStatusFound(t *testing.T) {
	processedAt := time.Date(2025, 4, 1, 12, 30, 0, 0, time.UTC)
	fs := &fakeHistoryStore{records: []store.ListedRecord{{
		ID: "rec-7",
		Record: models.MinutesRecord{
			Status:         models.StatusCompleted,
			SourceTitle:    "Standup",
			GeneratedTitle: "進捗共有",
			ProcessedAt:    &processedAt,
			PublishedURL:   "https://www.notion.so/p",
		},
	}}}

	res, err := (&ResultsFunction{store: fs}).Status(context.Background(), "rec-7")
	require.NoError(t, err)
	assert.Equal(t, "rec-7", res.ID)
	assert.Equal(t, models.StatusCompleted, res.Status)
	assert.Equal(t, "進捗共有", res.GeneratedTitle)
	assert.Equal(t, "https://www.notion.so/p", res.PublishedURL)
	assert.Empty(t, res.ErrorMessage)
}

func TestStatusNotFound(t *testing.T) {
	_, err := (&ResultsFunction{store: &fakeHistoryStore{}}).Status(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestHistoryDetail(t *testing.T) {
	fs := &fakeHistoryStore{records: seededHistory(3)}

	entry, err := (&ResultsFunction{store: fs}).History(context.Background(), "rec-01")
	require.NoError(t, err)
	assert.Equal(t, "rec-01", entry.ID)
	assert.Equal(t, "meeting 1", entry.SourceTitle)
	assert.Equal(t, models.StatusFailed, entry.Status)
}

func TestListHistoriesPagination(t *testing.T) {
	f := &ResultsFunction{store: &fakeHistoryStore{records: seededHistory(25)}}

	res, err := f.ListHistories(context.Background(), 1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, 3, res.TotalPages)
	require.Len(t, res.Data, 10)
	assert.Equal(t, "rec-00", res.Data[0].ID, "first page starts at the newest record")

	res, err = f.ListHistories(context.Background(), 3, 10, "")
	require.NoError(t, err)
	require.Len(t, res.Data, 5, "last page holds the remainder")
	assert.Equal(t, "rec-20", res.Data[0].ID)

	res, err = f.ListHistories(context.Background(), 9, 10, "")
	require.NoError(t, err)
	assert.Empty(t, res.Data, "pages past the end are empty, not an error")
	assert.Equal(t, 25, res.Total)
}

func TestListHistoriesDefaults(t *testing.T) {
	f := &ResultsFunction{store: &fakeHistoryStore{records: seededHistory(12)}}

	res, err := f.ListHistories(context.Background(), 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.PerPage)
	assert.Len(t, res.Data, 10)
}

func TestListHistoriesStatusFilter(t *testing.T) {
	f := &ResultsFunction{store: &fakeHistoryStore{records: seededHistory(10)}}

	res, err := f.ListHistories(context.Background(), 1, 20, models.StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total, "total counts the filtered set, not all records")
	assert.Equal(t, 1, res.TotalPages)
	for _, entry := range res.Data {
		assert.Equal(t, models.StatusFailed, entry.Status)
	}
}

func TestListHistoriesEmpty(t *testing.T) {
	f := &ResultsFunction{store: &fakeHistoryStore{}}

	res, err := f.ListHistories(context.Background(), 1, 10, "")
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Zero(t, res.TotalPages)
	assert.Empty(t, res.Data)
}
