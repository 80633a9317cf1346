package ocr

import (
	"context"
	"strings"
)

// UnsupportedFileTypeText is stored as the extraction result for non-image
// documents. Its presence marks a completed attempt, so the pipeline never
// retries these files.
const UnsupportedFileTypeText = "[OCR not supported for this file type]"

// Confidence bands for the heuristic extractor
const (
	ConfidenceHigh  = 85
	ConfidenceLow   = 60
	ConfidenceEmpty = 30
)

// Extractor pulls text from a document. Implementations never fail: any
// engine error degrades to empty text with zero confidence.
type Extractor interface {
	Extract(ctx context.Context, mimeType string, data []byte) (text string, confidence int)
}

// Engine performs the raw text extraction for an image. Pluggable so a real
// OCR backend can be swapped in without touching the banding rules.
type Engine func(ctx context.Context, data []byte) (string, error)

// HeuristicExtractor wraps an engine with the production confidence
// heuristic: only images are processed, and confidence is banded by how much
// text came back rather than by engine-reported certainty.
type HeuristicExtractor struct {
	engine Engine
}

var _ Extractor = (*HeuristicExtractor)(nil)

// NewHeuristicExtractor creates an extractor around the given engine. A nil
// engine extracts nothing, which still exercises the banding and marker
// semantics.
func NewHeuristicExtractor(engine Engine) *HeuristicExtractor {
	if engine == nil {
		engine = func(ctx context.Context, data []byte) (string, error) { return "", nil }
	}
	return &HeuristicExtractor{engine: engine}
}

// Extract runs the engine on image payloads and bands the confidence:
// 85 for more than 50 extracted characters, 60 for any text, 30 for none.
// Non-image payloads get the fixed marker text with zero confidence, and
// engine failures degrade to ("", 0).
func (e *HeuristicExtractor) Extract(ctx context.Context, mimeType string, data []byte) (string, int) {
	if !strings.HasPrefix(mimeType, "image/") {
		return UnsupportedFileTypeText, 0
	}

	raw, err := e.engine(ctx, data)
	if err != nil {
		return "", 0
	}

	text := strings.TrimSpace(raw)
	switch {
	case len(text) > 50:
		return text, ConfidenceHigh
	case len(text) > 0:
		return text, ConfidenceLow
	default:
		return text, ConfidenceEmpty
	}
}
