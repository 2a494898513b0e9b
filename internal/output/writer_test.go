package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudtrim/internal/optimize"
)

func sampleReport(t *testing.T) optimize.OptimizationReport {
	t.Helper()
	results := []optimize.ClassificationResult{
		{
			ResourceID:             "i-abc",
			Provider:               optimize.AWS,
			Kind:                   optimize.Compute,
			Underutilized:          true,
			Reason:                 optimize.ReasonLowCPU,
			EstimatedMonthlySaving: 146.0,
		},
	}
	return optimize.Aggregate(results, time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))
}

func TestWriteToFileSystem(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(Config{Type: FileSystem, OutputDir: dir})

	report := sampleReport(t)
	skipped := []optimize.SkippedSample{{ResourceID: "i-bad", Error: "resource_id is empty"}}

	path, err := writer.Write(report, skipped)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "2026", "03", "14", "optimization_report_09-26-53.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, report.ReportID, envelope.Report.ReportID)
	assert.InDelta(t, 146.0, envelope.Report.EstimatedMonthlySavingsTotal, 0.0001)
	require.Len(t, envelope.SkippedResources, 1)
	assert.Equal(t, "i-bad", envelope.SkippedResources[0].ResourceID)
}

func TestFilePathS3OmitsBaseDir(t *testing.T) {
	writer := NewWriter(Config{Type: S3, S3Bucket: "reports"})

	path := writer.FilePath(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))
	assert.Equal(t, filepath.Join("2026", "03", "14", "optimization_report_09-26-53.json"), path)
}

func TestWriteRejectsUnknownType(t *testing.T) {
	writer := NewWriter(Config{Type: Type("ftp")})

	_, err := writer.Write(sampleReport(t), nil)
	assert.Error(t, err)
}

func TestNewWriterDefaults(t *testing.T) {
	writer := NewWriter(Config{Type: FileSystem})

	assert.Equal(t, "output", writer.config.OutputDir)
	assert.Equal(t, defaultMaxRetries, writer.config.Retry.MaxRetries)
	assert.Equal(t, int64(defaultPartSize), writer.config.Upload.PartSize)
}
