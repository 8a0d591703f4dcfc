package report

import (
	"bytes"
	"encoding/json"
	"net/http"

	"Deckframe/internal/calc/framing"
	"Deckframe/internal/calc/materials"
	deckerr "Deckframe/internal/errors"
)

type Input struct {
	Meta
	Deck framing.Input `json:"deck"`
}

type Handler struct {
	Engine *framing.Engine
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	r.Body = http.MaxBytesReader(w, r.Body, framing.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	calc := framing.Calculate
	if h.Engine != nil {
		calc = h.Engine.Calculate
	}
	plan, err := calc(input.Deck)
	if err != nil {
		if deckerr.IsClientError(err) {
			http.Error(w, deckerr.UserMessage(err), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return
	}
	take, err := materials.Calculate(plan)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := Write(&buf, input.Meta, input.Deck.Inputs, plan, take); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"framing-plan.pdf\"")
	w.Write(buf.Bytes())
}
