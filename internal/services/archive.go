package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/minutesflow/internal/gcp"
	"golang.org/x/sync/errgroup"
)

// ArtifactWriter persists one named archive artifact.
type ArtifactWriter interface {
	Save(ctx context.Context, objectName, content string) error
}

// gcsArtifactWriter writes artifacts into a GCS bucket, create-if-absent.
type gcsArtifactWriter struct {
	bucket *storage.BucketHandle
}

func (w *gcsArtifactWriter) Save(ctx context.Context, objectName, content string) error {
	return gcp.SaveToGCSAtomically(ctx, w.bucket, objectName, content)
}

// Archiver keeps a copy of each completed run's raw payload and generated
// minutes, one folder per record id. Writes are create-if-absent, so a
// replayed archive of the same record is a no-op.
type Archiver struct {
	writer ArtifactWriter
}

// NewArchiver creates an Archiver writing into the given bucket.
func NewArchiver(client *storage.Client, bucket string) *Archiver {
	return &Archiver{writer: &gcsArtifactWriter{bucket: client.Bucket(bucket)}}
}

// Archive uploads the two artifacts concurrently.
func (a *Archiver) Archive(ctx context.Context, id, rawPayload, minutes string) error {
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return a.writer.Save(gctx, fmt.Sprintf("%s/payload.json", id), rawPayload)
	})
	eg.Go(func() error {
		return a.writer.Save(gctx, fmt.Sprintf("%s/minutes.md", id), minutes)
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("failed to archive record %s: %w", id, err)
	}
	return nil
}
