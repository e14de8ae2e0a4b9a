package gcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Objects bundles a storage client with the object helpers the stages
// share.
type Objects struct {
	client *storage.Client
}

// NewObjects creates the storage client wrapper.
func NewObjects(ctx context.Context) (*Objects, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Objects{client: client}, nil
}

func (o *Objects) DownloadBytes(ctx context.Context, bucket, object string) ([]byte, error) {
	return DownloadBytes(ctx, o.client, bucket, object)
}

func (o *Objects) DownloadText(ctx context.Context, bucket, object string) (string, error) {
	return DownloadText(ctx, o.client, bucket, object)
}

func (o *Objects) UploadText(ctx context.Context, bucket, object, content string) error {
	return UploadText(ctx, o.client, bucket, object, content)
}

func (o *Objects) SaveAtomically(ctx context.Context, bucket, object, content string) error {
	return SaveToGCSAtomically(ctx, o.client.Bucket(bucket), object, content)
}

// DownloadBytes reads an entire GCS object into memory.
func DownloadBytes(ctx context.Context, client *storage.Client, bucket, object string) ([]byte, error) {
	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// DownloadText reads a GCS object as a string.
func DownloadText(ctx context.Context, client *storage.Client, bucket, object string) (string, error) {
	data, err := DownloadBytes(ctx, client, bucket, object)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UploadText writes content to a GCS object, overwriting any existing one.
// Status artifacts in this pipeline are last-write-wins.
func UploadText(ctx context.Context, client *storage.Client, bucket, object, content string) error {
	writer := client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(writer, strings.NewReader(content)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to gs://%s/%s: %w", bucket, object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize write to gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// It's a shared utility for stages that must not clobber an earlier run's output.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, content string) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)

	if _, err := io.Copy(writer, strings.NewReader(content)); err != nil {
		_ = writer.Close()
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			slog.Info("Skipping write, object already exists.", "gcsObject", objectName)
			return nil // Not a failure in an idempotent workflow.
		}
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}
