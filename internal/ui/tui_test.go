package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTUIRendererRejectsNonTTY(t *testing.T) {
	_, err := NewTUIRenderer(Config{Output: &bytes.Buffer{}})
	require.Error(t, err)
}

func TestNewBuildModelDefaults(t *testing.T) {
	m := newBuildModel(NewProgressTracker(), "/out")
	assert.Equal(t, "/out", m.outputDir)
	assert.Equal(t, 80, m.width)
}

func TestBuildModelRenderStages(t *testing.T) {
	tracker := NewProgressTracker()
	m := newBuildModel(tracker, "")
	tracker.SetStage(StageCompress, 10)

	view := m.renderStages()
	assert.Contains(t, view, "Ingest")
	assert.Contains(t, view, "Compress")
	assert.Contains(t, view, "Embed")
}

func TestBuildModelRenderCompleteShowsStats(t *testing.T) {
	m := newBuildModel(NewProgressTracker(), "")
	m.complete = true
	m.stats = CompletionStats{Documents: 7, Keywords: 99, ImageBytes: 1024, Duration: 2 * time.Second}

	view := m.View()
	assert.Contains(t, view, "Build Complete")
	assert.Contains(t, view, "7")
	assert.Contains(t, view, "99")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "2m", formatDuration(2*time.Minute))
	assert.Equal(t, "2m 5s", formatDuration(2*time.Minute+5*time.Second))
	assert.Equal(t, "1h 5m", formatDuration(65*time.Minute))
}

func TestTruncateFilePath(t *testing.T) {
	assert.Equal(t, "", truncateFilePath("", 10))
	assert.Equal(t, "short", truncateFilePath("short", 10))
	assert.LessOrEqual(t, len(truncateFilePath("a/very/long/nested/path/to/doc.json", 15)), 15)
}
