package framing

import (
	"encoding/json"
	"net/http"

	deckerr "Deckframe/internal/errors"
)

// MaxRequestBytes caps a single deck request body.
const MaxRequestBytes = 1 << 20

type Handler struct {
	Engine *Engine
}

func (h *Handler) engine() *Engine {
	if h.Engine == nil {
		return defaultEngine
	}
	return h.Engine
}

// Calc answers with the framing plan. Rejected footprints still come back
// as a plan with its error field set, with status 422.
func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.engine().Calculate(input)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		if !deckerr.IsClientError(err) {
			http.Error(w, "Calculation error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(res)
}

// GeoJSON answers with the plan as a GeoJSON FeatureCollection.
func (h *Handler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	var input Input
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.engine().Calculate(input)
	if err != nil {
		if !deckerr.IsClientError(err) {
			http.Error(w, "Calculation error", http.StatusInternalServerError)
			return
		}
		http.Error(w, deckerr.UserMessage(err), http.StatusUnprocessableEntity)
		return
	}
	data, err := ToFeatureCollection(res).MarshalJSON()
	if err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}
