package annotation

import (
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ErrNoMask is returned when a PNG mask export is requested for an image
// that has no mask content. Absence is a reported error, not an empty file.
var ErrNoMask = errors.New("no mask data to export")

// ExportRecord is the JSON export shape for one annotated image.
type ExportRecord struct {
	Image       string             `json:"image"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	CreatedAt   time.Time          `json:"created_at"`
	Annotations []Region           `json:"annotations"`
	MaskData    *string            `json:"maskData"`
	Summary     *ConfidenceSummary `json:"summary,omitempty"`
}

// ConfidenceSummary aggregates detection confidences for an export.
type ConfidenceSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes confidence statistics over a region list. Returns nil
// for an empty list.
func Summarize(regions []Region) *ConfidenceSummary {
	if len(regions) == 0 {
		return nil
	}
	conf := make([]float64, len(regions))
	minC, maxC := regions[0].Confidence, regions[0].Confidence
	for i, r := range regions {
		conf[i] = r.Confidence
		if r.Confidence < minC {
			minC = r.Confidence
		}
		if r.Confidence > maxC {
			maxC = r.Confidence
		}
	}

	s := &ConfidenceSummary{
		Count: len(conf),
		Mean:  stat.Mean(conf, nil),
		Min:   minC,
		Max:   maxC,
	}
	if len(conf) > 1 {
		s.StdDev = stat.StdDev(conf, nil)
	}
	return s
}

// MarshalJSONExport builds the JSON export document for one image.
// maskData may be "" for an image without a saved mask; it is emitted as
// null so consumers can distinguish "no mask" from an empty blob.
func MarshalJSONExport(name string, width, height int, regions []Region, maskData string) ([]byte, error) {
	rec := ExportRecord{
		Image:       name,
		Width:       width,
		Height:      height,
		CreatedAt:   time.Now().UTC(),
		Annotations: regions,
		Summary:     Summarize(regions),
	}
	if rec.Annotations == nil {
		rec.Annotations = []Region{}
	}
	if maskData != "" {
		rec.MaskData = &maskData
	}
	return json.MarshalIndent(rec, "", "  ")
}

// WriteCSV writes the annotation list as CSV: a header row followed by one
// row per annotation, floats formatted to 4 decimal places.
func WriteCSV(w io.Writer, regions []Region) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "label", "confidence", "ymin", "xmin", "ymax", "xmax"}); err != nil {
		return err
	}
	for _, r := range regions {
		row := []string{
			r.ID,
			r.Label,
			fmt.Sprintf("%.4f", r.Confidence),
			fmt.Sprintf("%.4f", r.YMin),
			fmt.Sprintf("%.4f", r.XMin),
			fmt.Sprintf("%.4f", r.YMax),
			fmt.Sprintf("%.4f", r.XMax),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeMaskPNG converts an encoded mask blob back to raw PNG bytes for a
// mask export. Returns ErrNoMask when the blob is absent.
func DecodeMaskPNG(maskData string) ([]byte, error) {
	if maskData == "" {
		return nil, ErrNoMask
	}
	raw, err := base64.StdEncoding.DecodeString(maskData)
	if err != nil {
		return nil, fmt.Errorf("malformed mask blob: %w", err)
	}
	return raw, nil
}
