package batch

import (
	"encoding/json"
	"net/http"

	"Deckframe/internal/calc/framing"
)

type Handler struct {
	Engine *framing.Engine
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(r.Context(), h.Engine, input)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
