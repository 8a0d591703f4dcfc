package importer

import (
	"encoding/json"
	"net/http"

	"Deckframe/internal/calc/framing"
)

// MaxUploadSize caps the spreadsheet upload.
const MaxUploadSize = 10 << 20

type Handler struct {
	Engine *framing.Engine
}

func (h *Handler) Decks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := Import(file, h.Engine)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
