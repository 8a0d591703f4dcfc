package importer

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"Deckframe/internal/calc/framing"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

var sheet = [][]any{
	{"name", "width_ft", "depth_ft", "joist_spacing_in", "deck_height_in", "attachment", "beam_type", "picture_frame", "footing_type"},
	{"back deck", 16, 12, 16, 36},
	{"pool deck", 20, 10, 12, 30, "Floating", "flush", "single", "helical"},
	{"typo", "sixteen", 12},
	{},
	{"bad enum", 12, 10, 16, 36, "bolted"},
}

func TestImport(t *testing.T) {
	res, err := Import(workbook(t, sheet), framing.New(nil, log.New(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 || res.Skipped != 2 || len(res.Results) != 4 {
		t.Fatalf("count = %d, skipped = %d, results = %d", res.Count, res.Skipped, len(res.Results))
	}

	first := res.Results[0]
	if first.Row != 2 || first.Name != "back deck" || first.Plan == nil || first.Plan.JoistSize != "2x10" {
		t.Errorf("first row = %+v", first)
	}
	pool := res.Results[1].Plan
	if pool == nil || pool.Ledger != nil || pool.JoistSpacing != 12 {
		t.Errorf("floating deck plan = %+v", pool)
	}
	if res.Results[2].Error == "" || res.Results[2].Plan != nil {
		t.Errorf("unparseable row = %+v", res.Results[2])
	}
	if res.Results[3].Row != 6 || res.Results[3].Error == "" {
		t.Errorf("bad enum row = %+v", res.Results[3])
	}
}

func TestImportRejectsNonSpreadsheet(t *testing.T) {
	if _, err := Import(bytes.NewBufferString("name,width\n"), nil); err == nil {
		t.Error("expected an error for CSV input")
	}
	if _, err := Import(workbook(t, sheet[:1]), nil); err == nil {
		t.Error("expected an error for a header-only sheet")
	}
}

func TestHandlerDecks(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "decks.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.Copy(fw, workbook(t, sheet)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/framing/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	(&Handler{Engine: framing.New(nil, log.New(io.Discard))}).Decks(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	(&Handler{}).Decks(rec, httptest.NewRequest(http.MethodPost, "/api/user/tools/framing/import", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file: status = %d, want 400", rec.Code)
	}
}
