package materials

import (
	"encoding/json"
	"net/http"

	"Deckframe/internal/calc/framing"
	deckerr "Deckframe/internal/errors"
)

type Handler struct {
	Engine *framing.Engine
}

func (h *Handler) takeoff(w http.ResponseWriter, r *http.Request) (Takeoff, bool) {
	var input framing.Input
	r.Body = http.MaxBytesReader(w, r.Body, framing.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return Takeoff{}, false
	}
	calc := framing.Calculate
	if h.Engine != nil {
		calc = h.Engine.Calculate
	}
	plan, err := calc(input)
	if err != nil {
		if deckerr.IsClientError(err) {
			http.Error(w, deckerr.UserMessage(err), http.StatusUnprocessableEntity)
		} else {
			http.Error(w, "Calculation error", http.StatusInternalServerError)
		}
		return Takeoff{}, false
	}
	t, err := Calculate(plan)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return Takeoff{}, false
	}
	return t, true
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	t, ok := h.takeoff(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// XLSX answers with the cut list as a spreadsheet download.
func (h *Handler) XLSX(w http.ResponseWriter, r *http.Request) {
	t, ok := h.takeoff(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"cut-list.xlsx\"")
	if err := WriteXLSX(w, t); err != nil {
		http.Error(w, "Export error", http.StatusInternalServerError)
	}
}
