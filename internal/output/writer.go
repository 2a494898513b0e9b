// Package output persists optimization reports to the local
// filesystem or an S3 bucket.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/schollz/progressbar/v3"

	awscollect "cloudtrim/internal/collect/aws"
	"cloudtrim/internal/optimize"
)

const (
	defaultMaxRetries        = 3
	defaultRetryDelay        = 2 * time.Second
	defaultPartSize          = 5 * 1024 * 1024 // 5MB
	defaultConcurrentUploads = 5
)

// RetryConfig holds retry configuration for S3 uploads
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// UploadConfig holds S3 upload tuning
type UploadConfig struct {
	PartSize        int64
	ConcurrentParts int
}

// Type represents the output destination type
type Type string

const (
	// FileSystem represents local filesystem output
	FileSystem Type = "filesystem"
	// S3 represents S3 bucket output
	S3 Type = "s3"
)

// Config holds output configuration
type Config struct {
	Type      Type
	S3Bucket  string
	S3Region  string
	OutputDir string
	Retry     *RetryConfig
	Upload    *UploadConfig
}

// Envelope is the serialized report document: the aggregated report
// plus any samples that were skipped during classification.
type Envelope struct {
	Report           optimize.OptimizationReport `json:"report"`
	SkippedResources []optimize.SkippedSample    `json:"skipped_resources,omitempty"`
}

// Writer handles writing optimization reports to different destinations
type Writer struct {
	config Config
}

// NewWriter creates a new report writer with default settings
func NewWriter(config Config) *Writer {
	if config.Retry == nil {
		config.Retry = &RetryConfig{
			MaxRetries: defaultMaxRetries,
			RetryDelay: defaultRetryDelay,
		}
	}

	if config.Upload == nil {
		config.Upload = &UploadConfig{
			PartSize:        defaultPartSize,
			ConcurrentParts: defaultConcurrentUploads,
		}
	}

	if config.Type == FileSystem && config.OutputDir == "" {
		config.OutputDir = "output"
	}
	return &Writer{config: config}
}

// FilePath returns the report path in the format:
// filesystem: <outputDir>/YYYY/MM/DD/optimization_report_HH-MM-SS.json
// s3: YYYY/MM/DD/optimization_report_HH-MM-SS.json
func (w *Writer) FilePath(t time.Time) string {
	fileName := "optimization_report_" + t.Format("15-04-05") + ".json"
	datePath := t.Format("2006/01/02")

	if w.config.Type == FileSystem {
		return filepath.Join(w.config.OutputDir, datePath, fileName)
	}
	return filepath.Join(datePath, fileName)
}

// Write persists the report envelope to the configured destination and
// returns the path it was written to.
func (w *Writer) Write(report optimize.OptimizationReport, skipped []optimize.SkippedSample) (string, error) {
	data, err := json.MarshalIndent(Envelope{
		Report:           report,
		SkippedResources: skipped,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := w.FilePath(report.Timestamp)

	switch w.config.Type {
	case FileSystem:
		return path, w.writeToFileSystem(path, data)
	case S3:
		return path, w.writeToS3WithRetry(path, data)
	default:
		return "", fmt.Errorf("unsupported output type: %s", w.config.Type)
	}
}

func (w *Writer) writeToFileSystem(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

func (w *Writer) writeToS3WithRetry(path string, data []byte) error {
	if w.config.S3Bucket == "" {
		return fmt.Errorf("S3 bucket not specified")
	}

	var lastErr error
	for attempt := 0; attempt < w.config.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			fmt.Printf("Retrying S3 upload (attempt %d/%d) after error: %v\n",
				attempt+1, w.config.Retry.MaxRetries, lastErr)
			time.Sleep(w.config.Retry.RetryDelay)
		}

		if err := w.writeToS3(path, data); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to upload to S3 after %d attempts: %w",
		w.config.Retry.MaxRetries, lastErr)
}

// writeToS3 uploads the report with progress tracking
func (w *Writer) writeToS3(path string, data []byte) error {
	sess, err := awscollect.GetSession(w.config.S3Region)
	if err != nil {
		return fmt.Errorf("failed to create AWS session: %w", err)
	}

	uploader := s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
		u.PartSize = w.config.Upload.PartSize
		u.Concurrency = w.config.Upload.ConcurrentParts
	})

	reader := &progressReader{
		reader: bytes.NewReader(data),
		size:   int64(len(data)),
		bar: progressbar.NewOptions64(
			int64(len(data)),
			progressbar.OptionSetDescription("Uploading report to S3..."),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(15),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		),
	}

	_, err = uploader.Upload(&s3manager.UploadInput{
		Bucket:               aws.String(w.config.S3Bucket),
		Key:                  aws.String(path),
		Body:                 reader,
		ServerSideEncryption: aws.String("aws:kms"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// progressReader wraps an io.Reader to track upload progress
type progressReader struct {
	reader io.Reader
	size   int64
	read   int64
	bar    *progressbar.ProgressBar
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += int64(n)
	if err := r.bar.Add(n); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating progress bar: %v\n", err)
	}
	return n, err
}
