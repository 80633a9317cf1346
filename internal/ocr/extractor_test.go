package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicExtractor_ConfidenceBands(t *testing.T) {
	tests := []struct {
		name           string
		engineText     string
		wantText       string
		wantConfidence int
	}{
		{"long text", strings.Repeat("invoice line\n", 10), strings.TrimSpace(strings.Repeat("invoice line\n", 10)), ConfidenceHigh},
		{"short text", "Total: 120.00", "Total: 120.00", ConfidenceLow},
		{"whitespace only", "   \n\t ", "", ConfidenceEmpty},
		{"empty", "", "", ConfidenceEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewHeuristicExtractor(func(ctx context.Context, data []byte) (string, error) {
				return tt.engineText, nil
			})

			text, confidence := extractor.Extract(context.Background(), "image/png", []byte("img"))
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantConfidence, confidence)
		})
	}
}

func TestHeuristicExtractor_NonImageGetsMarker(t *testing.T) {
	engineCalled := false
	extractor := NewHeuristicExtractor(func(ctx context.Context, data []byte) (string, error) {
		engineCalled = true
		return "should not run", nil
	})

	text, confidence := extractor.Extract(context.Background(), "application/pdf", []byte("%PDF"))
	assert.Equal(t, UnsupportedFileTypeText, text)
	assert.Equal(t, 0, confidence)
	assert.False(t, engineCalled)
}

func TestHeuristicExtractor_EngineFailureDegrades(t *testing.T) {
	extractor := NewHeuristicExtractor(func(ctx context.Context, data []byte) (string, error) {
		return "", errors.New("engine unavailable")
	})

	text, confidence := extractor.Extract(context.Background(), "image/jpeg", []byte("img"))
	assert.Equal(t, "", text)
	assert.Equal(t, 0, confidence)
}

func TestHeuristicExtractor_NilEngine(t *testing.T) {
	extractor := NewHeuristicExtractor(nil)

	text, confidence := extractor.Extract(context.Background(), "image/png", []byte("img"))
	assert.Equal(t, "", text)
	assert.Equal(t, ConfidenceEmpty, confidence)
}
