// Package detect calls a remote vision model to generate bounding-box
// annotations for an image.
//
// The model is a black-box collaborator: it receives the image plus a
// target description and returns labeled normalized boxes with confidence
// scores. A malformed or empty response is treated as zero detections, not
// an error; only transport and API failures surface as errors.
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"

	"cellbrush/internal/annotation"
)

const defaultTimeout = 300 * time.Second

// promptTemplate instructs the model to reply with a bare JSON array of
// detections in normalized ymin/xmin/ymax/xmax order.
const promptTemplate = `Find every instance of: %s.
Reply with only a JSON array, no prose. Each element:
{"label": "<short label>", "confidence": <0..1>, "box_2d": [ymin, xmin, ymax, xmax]}
Box coordinates are normalized to the range 0..1 relative to the image.`

// Client wraps the Ollama API client for detection requests.
type Client struct {
	client *api.Client
	model  string
}

// NewClient creates a detection client for the given Ollama host URL and
// vision model name.
func NewClient(host, model string) (*Client, error) {
	parsed, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host URL: %w", err)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Client{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

// Detect sends the image and target description to the vision model and
// returns the detected regions. Regions come back normalized and with
// fresh unique ids.
func (c *Client) Detect(ctx context.Context, imageBytes []byte, target string) ([]annotation.Region, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: fmt.Sprintf(promptTemplate, target),
				Images:  []api.ImageData{api.ImageData(imageBytes)},
			},
		},
		Stream: &streamFalse,
	}

	var responseContent string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %w", err)
	}

	return ParseDetections(responseContent, target), nil
}

// detectedBox is the wire shape of one model detection.
type detectedBox struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box_2d"`
}

// ParseDetections extracts regions from a raw model response. Responses
// that are not parseable JSON, or that carry no valid boxes, yield an
// empty list.
func ParseDetections(raw, fallbackLabel string) []annotation.Region {
	raw = sanitizeModelJSON(raw)
	if raw == "" {
		return nil
	}

	var boxes []detectedBox
	if err := json.Unmarshal([]byte(raw), &boxes); err != nil {
		// Some models wrap the array in an object.
		var wrapped struct {
			Detections []detectedBox `json:"detections"`
		}
		if err2 := json.Unmarshal([]byte(raw), &wrapped); err2 != nil {
			return nil
		}
		boxes = wrapped.Detections
	}

	var regions []annotation.Region
	for _, b := range boxes {
		if len(b.Box) != 4 {
			continue
		}
		label := strings.TrimSpace(b.Label)
		if label == "" {
			label = fallbackLabel
		}
		r := annotation.Region{
			ID:         uuid.NewString(),
			Label:      label,
			Confidence: b.Confidence,
			YMin:       normalizeCoord(b.Box[0]),
			XMin:       normalizeCoord(b.Box[1]),
			YMax:       normalizeCoord(b.Box[2]),
			XMax:       normalizeCoord(b.Box[3]),
		}
		r.Normalize()
		regions = append(regions, r)
	}
	return regions
}

// normalizeCoord maps model coordinates to [0,1]. Some vision models emit
// a 0..1000 integer grid instead of unit fractions.
func normalizeCoord(v float64) float64 {
	if v > 1 {
		return v / 1000
	}
	return v
}

// sanitizeModelJSON removes code fences, comments, and trailing commas,
// and slices the response down to the outermost JSON array or object.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	reBlock := regexp.MustCompile(`(?s)/\*.*?\*/`)
	raw = reBlock.ReplaceAllString(raw, "")
	reLine := regexp.MustCompile(`(?m)^\s*//.*$`)
	raw = reLine.ReplaceAllString(raw, "")

	reTrailing := regexp.MustCompile(`,(\s*[}\]])`)
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost [...] (preferred) or {...}.
	if start := strings.Index(raw, "["); start >= 0 {
		if end := strings.LastIndex(raw, "]"); end > start {
			return strings.TrimSpace(raw[start : end+1])
		}
	}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			return strings.TrimSpace(raw[start : end+1])
		}
	}
	return ""
}
