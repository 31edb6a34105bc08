package detect

import (
	"testing"
)

func TestParseDetectionsPlainArray(t *testing.T) {
	raw := `[
		{"label": "cell", "confidence": 0.92, "box_2d": [0.1, 0.2, 0.3, 0.4]},
		{"label": "cell", "confidence": 0.55, "box_2d": [0.5, 0.5, 0.9, 0.9]}
	]`
	regions := ParseDetections(raw, "cells")
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}

	r := regions[0]
	if r.Label != "cell" || r.Confidence != 0.92 {
		t.Errorf("region %+v", r)
	}
	if r.YMin != 0.1 || r.XMin != 0.2 || r.YMax != 0.3 || r.XMax != 0.4 {
		t.Errorf("box %+v", r)
	}
	if r.ID == "" || r.ID == regions[1].ID {
		t.Error("regions must get fresh unique ids")
	}
}

func TestParseDetectionsCodeFence(t *testing.T) {
	raw := "```json\n[{\"label\": \"nucleus\", \"confidence\": 0.7, \"box_2d\": [0.0, 0.0, 0.5, 0.5]}]\n```"
	regions := ParseDetections(raw, "cells")
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	if regions[0].Label != "nucleus" {
		t.Errorf("label %q", regions[0].Label)
	}
}

func TestParseDetectionsWrappedObject(t *testing.T) {
	raw := `{"detections": [{"label": "cell", "confidence": 0.8, "box_2d": [0.1, 0.1, 0.2, 0.2]}]}`
	regions := ParseDetections(raw, "cells")
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
}

func TestParseDetectionsThousandGrid(t *testing.T) {
	raw := `[{"label": "cell", "confidence": 0.9, "box_2d": [100, 200, 300, 400]}]`
	regions := ParseDetections(raw, "cells")
	if len(regions) != 1 {
		t.Fatal("expected one region")
	}
	r := regions[0]
	if r.YMin != 0.1 || r.XMin != 0.2 || r.YMax != 0.3 || r.XMax != 0.4 {
		t.Errorf("grid coordinates not normalized: %+v", r)
	}
}

func TestParseDetectionsSwappedAndOutOfRange(t *testing.T) {
	raw := `[{"label": "cell", "confidence": 1.8, "box_2d": [0.9, 0.8, 0.1, -0.2]}]`
	regions := ParseDetections(raw, "cells")
	if len(regions) != 1 {
		t.Fatal("expected one region")
	}
	r := regions[0]
	if r.YMin != 0.1 || r.YMax != 0.9 {
		t.Errorf("y pair not reordered: %v %v", r.YMin, r.YMax)
	}
	if r.XMin != 0 || r.XMax != 0.8 {
		t.Errorf("x pair not clamped/ordered: %v %v", r.XMin, r.XMax)
	}
	if r.Confidence != 1 {
		t.Errorf("confidence %v, want clamped", r.Confidence)
	}
}

func TestParseDetectionsFallbackLabel(t *testing.T) {
	raw := `[{"label": "  ", "confidence": 0.6, "box_2d": [0.1, 0.1, 0.2, 0.2]}]`
	regions := ParseDetections(raw, "mitochondria")
	if len(regions) != 1 {
		t.Fatal("expected one region")
	}
	if regions[0].Label != "mitochondria" {
		t.Errorf("label %q, want the requested target", regions[0].Label)
	}
}

func TestParseDetectionsMalformedIsEmpty(t *testing.T) {
	cases := []string{
		"",
		"I could not find any cells in this image.",
		"[{broken json",
		"null",
		`[{"label": "cell", "confidence": 0.9, "box_2d": [0.1, 0.2]}]`, // short box
	}
	for _, raw := range cases {
		if got := ParseDetections(raw, "cells"); len(got) != 0 {
			t.Errorf("input %q gave %d regions, want 0", raw, len(got))
		}
	}
}

func TestParseDetectionsProseAroundArray(t *testing.T) {
	raw := `Here are the detections you asked for:
[{"label": "cell", "confidence": 0.75, "box_2d": [0.2, 0.2, 0.4, 0.4]},]
Hope that helps!`
	regions := ParseDetections(raw, "cells")
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1 despite prose and trailing comma", len(regions))
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient("http://bad host:11434", "llava"); err == nil {
		t.Error("expected error for invalid host URL")
	}
	if _, err := NewClient("http://localhost:11434", "llava"); err != nil {
		t.Errorf("valid host rejected: %v", err)
	}
}
