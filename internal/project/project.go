// Package project serves a user's saved decks. Plans are not stored:
// they are recomputed from the saved inputs on every read so a table
// update reaches old projects.
package project

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"Deckframe/internal/auth"
	"Deckframe/internal/calc/framing"
	deckerr "Deckframe/internal/errors"
	"Deckframe/internal/repo"
)

type ProjectHandler struct {
	Repo   repo.Repository
	Engine *framing.Engine
}

type SaveRequest struct {
	Name string        `json:"name"`
	Deck framing.Input `json:"deck"`
}

type Response struct {
	Project *repo.Project       `json:"project"`
	Plan    *framing.Components `json:"plan"`
}

func (h *ProjectHandler) calc(in framing.Input) *framing.Components {
	e := h.Engine
	if e == nil {
		e = framing.New(nil, nil)
	}
	plan, _ := e.Calculate(in)
	return plan
}

func userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id := auth.UserID(r.Context())
	if id == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

func projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid project id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decodeSave(w http.ResponseWriter, r *http.Request) (SaveRequest, bool) {
	var req SaveRequest
	r.Body = http.MaxBytesReader(w, r.Body, framing.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Name required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeRepoError(w http.ResponseWriter, err error) {
	if deckerr.Is(err, deckerr.ErrCodeNotFound) {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}
	http.Error(w, "DB error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := userID(w, r)
	if !ok {
		return
	}
	projects, err := h.Repo.ListProjects(r.Context(), owner)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Create saves a deck. The plan is computed and returned but a deck that
// fails to frame is still saved.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := userID(w, r)
	if !ok {
		return
	}
	req, ok := decodeSave(w, r)
	if !ok {
		return
	}
	p := &repo.Project{OwnerID: owner, Name: req.Name, Deck: req.Deck}
	if err := h.Repo.CreateProject(r.Context(), p); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Project: p, Plan: h.calc(p.Deck)})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, err := h.Repo.GetProject(r.Context(), owner, id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Project: p, Plan: h.calc(p.Deck)})
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	req, ok := decodeSave(w, r)
	if !ok {
		return
	}
	p := &repo.Project{ID: id, OwnerID: owner, Name: req.Name, Deck: req.Deck}
	if err := h.Repo.UpdateProject(r.Context(), p); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Project: p, Plan: h.calc(p.Deck)})
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := h.Repo.DeleteProject(r.Context(), owner, id); err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Routes registers the project endpoints on r.
func (h *ProjectHandler) Routes(r *mux.Router) {
	r.HandleFunc("/projects", h.List).Methods("GET")
	r.HandleFunc("/projects", h.Create).Methods("POST")
	r.HandleFunc("/projects/{id}", h.Get).Methods("GET")
	r.HandleFunc("/projects/{id}", h.Update).Methods("PUT", "PATCH")
	r.HandleFunc("/projects/{id}", h.Delete).Methods("DELETE")
}
