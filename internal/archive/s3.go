package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/leadlens-ai/leadlens/internal/interview"
)

// S3API is the subset of the S3 client used by Exporter.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Exporter writes finished interview records to S3 for offline analysis.
type Exporter struct {
	bucket   string
	s3Client S3API
	logger   *slog.Logger
	now      func() time.Time
}

// NewExporter creates an Exporter. If bucket is empty, all operations are no-ops.
func NewExporter(s3Client S3API, bucket string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{bucket: bucket, s3Client: s3Client, logger: logger, now: time.Now}
}

// Enabled returns true if export is configured (bucket is set).
func (e *Exporter) Enabled() bool {
	return e != nil && e.bucket != "" && e.s3Client != nil
}

// Export writes an InterviewRecord as JSON to a by-date key.
func (e *Exporter) Export(ctx context.Context, record InterviewRecord) error {
	if !e.Enabled() {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("archive: marshal record: %w", err)
	}

	when := record.ArchivedAt
	if when.IsZero() {
		when = e.now().UTC()
	}

	s3Key := fmt.Sprintf("interviews/v1/by-date/%d/%02d/%02d/%s.json",
		when.Year(), when.Month(), when.Day(), record.SessionID)

	_, err = e.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(s3Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", s3Key, err)
	}

	e.logger.Info("exported interview to S3",
		"session_id", record.SessionID,
		"s3_key", s3Key,
		"score", record.Score,
		"finish_reason", record.FinishReason,
	)
	return nil
}

// Fetch reads back an exported record, mostly for verification tooling.
func (e *Exporter) Fetch(ctx context.Context, key string) (InterviewRecord, error) {
	if !e.Enabled() {
		return InterviewRecord{}, fmt.Errorf("archive: export not configured")
	}

	out, err := e.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return InterviewRecord{}, fmt.Errorf("archive: s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return InterviewRecord{}, fmt.Errorf("archive: read %s: %w", key, err)
	}

	var record InterviewRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return InterviewRecord{}, fmt.Errorf("archive: decode %s: %w", key, err)
	}
	return record, nil
}

// ExportHook adapts the exporter to the engine's finish boundary.
type ExportHook struct {
	exporter *Exporter
	now      func() time.Time
}

func NewExportHook(exporter *Exporter) *ExportHook {
	if exporter == nil {
		panic("archive: exporter required")
	}
	return &ExportHook{exporter: exporter, now: time.Now}
}

func (h *ExportHook) OnFinish(ctx context.Context, c interview.Context) error {
	return h.exporter.Export(ctx, NewRecord(c, h.now()))
}
