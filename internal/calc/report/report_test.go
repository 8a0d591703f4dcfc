package report

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"Deckframe/internal/calc/framing"
	"Deckframe/internal/calc/geometry"
	"Deckframe/internal/calc/materials"
)

func TestWrite(t *testing.T) {
	ft := func(x, y float64) geometry.Point {
		return geometry.Point{X: geometry.Pixels(x), Y: geometry.Pixels(y)}
	}
	in := framing.Input{
		Shape:         []geometry.Point{ft(0, 0), ft(16, 0), ft(16, 8), ft(12, 12), ft(0, 12)},
		LedgerIndices: framing.LedgerIndices{0},
		Inputs:        framing.Inputs{JoistSpacing: 16, PictureFrame: framing.FrameSingle},
	}
	plan, err := framing.New(nil, log.New(io.Discard)).Calculate(in)
	if err != nil {
		t.Fatal(err)
	}
	take, err := materials.Calculate(plan)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		take materials.Takeoff
	}{
		{"with cut list", take},
		{"without cut list", materials.Takeoff{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, Meta{Project: "Back deck", Notes: "Check setbacks."}, in.Inputs, plan, tt.take); err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Errorf("output is not a PDF")
			}
		})
	}
}

func TestWriteEmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Meta{}, framing.Inputs{}, &framing.Components{}, materials.Takeoff{}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("empty output")
	}
}

func TestHandlerGenerate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"rectangle", `{"project": "Back deck", "deck": {"shape": [{"x":0,"y":0},{"x":384,"y":0},{"x":384,"y":288},{"x":0,"y":288}], "ledgerIndices": 0}}`, http.StatusOK},
		{"no ledger", `{"deck": {"shape": [{"x":0,"y":0},{"x":384,"y":0},{"x":384,"y":288}]}}`, http.StatusUnprocessableEntity},
		{"bad json", `{"deck":`, http.StatusBadRequest},
	}
	h := &Handler{Engine: framing.New(nil, log.New(io.Discard))}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Generate(rec, httptest.NewRequest(http.MethodPost, "/api/user/tools/framing/report", strings.NewReader(tt.body)))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus == http.StatusOK && rec.Header().Get("Content-Type") != "application/pdf" {
				t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
			}
		})
	}
}
